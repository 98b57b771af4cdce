package types

import "fmt"

// ProviderKind names an embedding provider tier
type ProviderKind string

const (
	ProviderGollem ProviderKind = "gollem"
	ProviderGenAI  ProviderKind = "genai"
	ProviderOllama ProviderKind = "ollama"
	ProviderONNX   ProviderKind = "onnx"
	ProviderHashed ProviderKind = "hashed"
)

func (k ProviderKind) String() string {
	return string(k)
}

// IsValid checks if the provider kind is valid
func (k ProviderKind) IsValid() bool {
	switch k {
	case ProviderGollem, ProviderGenAI, ProviderOllama, ProviderONNX, ProviderHashed:
		return true
	default:
		return false
	}
}

// ParseProviderKind parses a string into a ProviderKind
func ParseProviderKind(s string) (ProviderKind, error) {
	kind := ProviderKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid embedding provider: %s", s)
	}
	return kind, nil
}

// BackendKind names a generation backend
type BackendKind string

const (
	BackendOllama  BackendKind = "ollama"
	BackendCommand BackendKind = "command"
	BackendGemini  BackendKind = "gemini"
)

// IsValid checks if the backend kind is valid
func (k BackendKind) IsValid() bool {
	switch k {
	case BackendOllama, BackendCommand, BackendGemini:
		return true
	default:
		return false
	}
}

// ParseBackendKind parses a string into a BackendKind
func ParseBackendKind(s string) (BackendKind, error) {
	kind := BackendKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid generation backend: %s", s)
	}
	return kind, nil
}
