package cli

var (
	RenderRun = renderRun
	StatsLine = statsLine
	PromptArg = promptArg
)
