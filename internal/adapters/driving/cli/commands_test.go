package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, name := range []string{"ingest", "ask", "status", "chat", "serve", "mcp", "watch", "settings", "version"} {
		assert.True(t, names[name], "missing command %s", name)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("home"))
}

func TestCommands_RequireServices(t *testing.T) {
	_, cleanup := setupTestServices()
	SetServices(&Services{})
	defer cleanup()

	for _, args := range [][]string{
		{"ask", "hello"},
		{"status"},
		{"ingest", "--text", "hello"},
		{"settings", "show"},
		{"watch", t.TempDir()},
	} {
		_, err := execute(t, args...)
		require.Error(t, err, args)
		assert.ErrorIs(t, err, errServicesNotConfigured, args)
	}
}

func TestIngestCmd_Text(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ingest", "--text", "Refunds are accepted within 30 days.", "--name", "policy")

	require.NoError(t, err)
	assert.Contains(t, out, "Document 'policy' processed successfully.")
	assert.Equal(t, []string{"Refunds are accepted within 30 days."}, ts.qa.ingested)
}

func TestIngestCmd_TextError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.qa.ingestErr = domain.ErrInvalidInput

	_, err := execute(t, "ingest", "--text", "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestCmd_File(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("Refunds are accepted within 30 days."), 0o600))

	out, err := execute(t, "ingest", path)

	require.NoError(t, err)
	assert.Equal(t, "policy.txt", ts.upload.filename)
	assert.Contains(t, out, "Document 'policy.txt' processed successfully.")
	assert.Contains(t, out, "Extracted 36 characters from policy.txt")
}

func TestIngestCmd_Errors(t *testing.T) {
	t.Run("no input", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "ingest")

		assert.EqualError(t, err, "a file or --text is required")
	})

	t.Run("both file and text", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "ingest", "--text", "x", "file.txt")

		assert.EqualError(t, err, "use either a file or --text, not both")
	})

	t.Run("missing file", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "ingest", filepath.Join(t.TempDir(), "missing.txt"))

		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported format", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.upload.err = domain.ErrUnsupportedFormat

		path := filepath.Join(t.TempDir(), "image.png")
		require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

		_, err := execute(t, "ingest", path)

		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})
}

func TestAskCmd_Args(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "How", "long", "for", "refunds?")

	require.NoError(t, err)
	assert.Equal(t, []string{"How long for refunds?"}, ts.qa.questions)
	assert.Contains(t, out, "Refunds are accepted within 30 days.")
	assert.Contains(t, out, "Confidence: 0.55")
}

func TestAskCmd_Stdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	stdinIsTerminal = func() bool { return false }
	rootCmd.SetIn(strings.NewReader("Who approves refunds?\n"))

	_, err := execute(t, "ask")

	require.NoError(t, err)
	assert.Equal(t, []string{"Who approves refunds?"}, ts.qa.questions)
}

func TestAskCmd_NoQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask")

	assert.EqualError(t, err, "a question is required")
}

func TestAskCmd_FixedMessageHasNoConfidence(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	answer := domain.NotRelevantAnswer("")
	ts.qa.answer = &answer

	out, err := execute(t, "ask", "weather?")

	require.NoError(t, err)
	assert.Contains(t, out, domain.MessageNotRelevant)
	assert.NotContains(t, out, "Confidence")
}

func TestAskCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--json", "refunds?")

	require.NoError(t, err)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "refunds?", body["answer"]["query"])
	assert.Equal(t, "Refunds are accepted within 30 days.", body["answer"]["result"])
	assert.InDelta(t, 0.55, body["answer"]["confidence"], 1e-9)
}

func TestStatusCmd(t *testing.T) {
	t.Run("no document", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		out, err := execute(t, "status")

		require.NoError(t, err)
		assert.Contains(t, out, "No document loaded.")
		assert.Contains(t, out, "Formats:    .docx, .md, .pdf, .txt")
	})

	t.Run("with document", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		ts.qa.status = domain.Status{HasDocument: true, DocumentName: "policy.txt", Segments: 2, GenerationID: "gen-1", IngestedAt: &at}

		out, err := execute(t, "status")

		require.NoError(t, err)
		assert.Contains(t, out, "Document:   policy.txt")
		assert.Contains(t, out, "Segments:   2")
		assert.Contains(t, out, "Ingested:   2025-03-01T12:00:00Z")
	})

	t.Run("json", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.qa.status = domain.Status{HasDocument: true, DocumentName: "policy.txt"}

		out, err := execute(t, "status", "--json")

		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &body))
		assert.Equal(t, true, body["has_document"])
		assert.Equal(t, "policy.txt", body["document_name"])
		assert.Len(t, body["supported_formats"], 4)
	})
}

func TestChatCmd_RunsProgram(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	var model tea.Model
	runProgram = func(m tea.Model) error {
		model = m
		return nil
	}

	_, err := execute(t, "chat")

	require.NoError(t, err)
	_, ok := model.(*tui.App)
	assert.True(t, ok)
}

func TestChatCmd_Alias(t *testing.T) {
	assert.Contains(t, chatCmd.Aliases, "tui")
}

func TestServeCmd_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestNewHTTPServer(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	server, err := newHTTPServer()

	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestMCPCmd_Flags(t *testing.T) {
	flag := mcpCmd.Flags().Lookup("http")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestWatchCmd_RequiresDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watch")
	assert.Error(t, err)

	_, err = execute(t, "watch", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSettingsCmd_Show(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Model: hashing-bow-1024")
	assert.Contains(t, out, "Same as embedding")
	assert.Contains(t, out, "Relevance threshold: 0.30")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCmd_ShowWarnsOnInvalid(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = domain.ErrInvalidInput

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: invalid input")
}

func TestSettingsCmd_Set(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "set", "qa.top_k", "5")

	require.NoError(t, err)
	assert.Equal(t, "5", ts.settings.set["qa.top_k"])
	assert.Contains(t, out, "Set qa.top_k = 5")
}

func TestSettingsCmd_SetMasksAPIKey(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "set", "llm.api_key", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Equal(t, "sk-1234567890abcdef", ts.settings.set["llm.api_key"])
	assert.Contains(t, out, "sk-1...cdef")
	assert.NotContains(t, out, "1234567890")
}

func TestSettingsCmd_SetRequiresValue(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "settings", "set", "qa.top_k")

	assert.EqualError(t, err, "a value is required for qa.top_k")
}

func TestSettingsCmd_SetError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.setErr = domain.ErrInvalidInput

	_, err := execute(t, "settings", "set", "qa.top_k", "zero")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsCmd_Keys(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "embedding.provider")
	assert.Contains(t, out, "qa.top_k")
}

func TestSettingsCmd_Check(t *testing.T) {
	t.Run("all reachable", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		out, err := execute(t, "settings", "check")

		require.NoError(t, err)
		assert.Contains(t, out, "Checking embedding... OK")
		assert.Contains(t, out, "All models are reachable.")
	})

	t.Run("llm unreachable", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.llmErr = domain.ErrModelUnavailable

		out, err := execute(t, "settings", "check")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm")
		assert.Contains(t, out, "Checking llm... FAILED")
	})
}
