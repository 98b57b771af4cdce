package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

func TestParseProviderKind(t *testing.T) {
	for _, s := range []string{"gollem", "genai", "ollama", "onnx", "hashed"} {
		t.Run(s, func(t *testing.T) {
			kind, err := types.ParseProviderKind(s)
			gt.NoError(t, err).Required()
			gt.Value(t, kind.String()).Equal(s)
			gt.Bool(t, kind.IsValid()).True()
		})
	}

	_, err := types.ParseProviderKind("openai")
	gt.Value(t, err).NotNil()
	_, err = types.ParseProviderKind("")
	gt.Value(t, err).NotNil()
}

func TestParseBackendKind(t *testing.T) {
	tests := []struct {
		input   string
		want    types.BackendKind
		wantErr bool
	}{
		{input: "ollama", want: types.BackendOllama},
		{input: "command", want: types.BackendCommand},
		{input: "gemini", want: types.BackendGemini},
		{input: "Ollama", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseBackendKind(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}
