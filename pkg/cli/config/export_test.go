package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewGenerationForTest creates a Generation config for testing purposes
func NewGenerationForTest(backends []string, endpoint, command string) *Generation {
	return &Generation{
		backends:       backends,
		ollamaEndpoint: endpoint,
		command:        command,
	}
}

// NewEmbeddingForTest creates an Embedding config for testing purposes
func NewEmbeddingForTest(providers []string, genaiKey string) *Embedding {
	return &Embedding{
		providers:   providers,
		GenAIAPIKey: genaiKey,
		ollamaModel: "nomic-embed-text",
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, path string) *Repository {
	return &Repository{
		backend: backend,
		path:    path,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewStormForTest creates a Storm config with flag values for testing purposes
func NewStormForTest(path, model string, nPaths int) *Storm {
	return &Storm{
		path:   path,
		model:  model,
		nPaths: nPaths,
	}
}
