package shell

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResult_MarshalJSON(t *testing.T) {
	title := "Trip_Plan"
	tests := []struct {
		name string
		r    Result
		want string
	}{
		{"text", Text("hi"), `{"type":"text","text":"hi"}`},
		{"empty text", Text(""), `{"type":"text","text":""}`},
		{"llmchat", OpenLLMChat(), `{"type":"action","action":"open","panel":"llmchat"}`},
		{"notes null", OpenNotes(nil), `{"type":"action","action":"open","panel":"notes","title":null}`},
		{"notes titled", OpenNotes(&title), `{"type":"action","action":"open","panel":"notes","title":"Trip_Plan"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.r)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestResult_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(OpenNotes(nil))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, yaml.Unmarshal(out, &m))
	require.Equal(t, "notes", m["panel"])
	require.Contains(t, m, "title")
	require.Nil(t, m["title"])

	out, err = yaml.Marshal(OpenLLMChat())
	require.NoError(t, err)
	m = nil
	require.NoError(t, yaml.Unmarshal(out, &m))
	require.NotContains(t, m, "title")
}
