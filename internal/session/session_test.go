package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/unreal-lsp/internal/completion"
	"github.com/HendryAvila/unreal-lsp/internal/engine"
	"github.com/HendryAvila/unreal-lsp/internal/knowledge"
	"github.com/HendryAvila/unreal-lsp/internal/protocol"
)

// --- helpers ---

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func frames(bodies ...string) io.Reader {
	var b strings.Builder
	for _, body := range bodies {
		b.WriteString(frame(body))
	}
	return strings.NewReader(b.String())
}

type rpcResponse struct {
	ID     json.RawMessage         `json:"id"`
	Result json.RawMessage         `json:"result"`
	Error  *protocol.ResponseError `json:"error"`
}

func readResponses(t *testing.T, out *bytes.Buffer) []rpcResponse {
	t.Helper()
	r := protocol.NewReader(out)
	var resps []rpcResponse
	for {
		body, err := r.Read()
		if errors.Is(err, io.EOF) {
			return resps
		}
		require.NoError(t, err)
		var resp rpcResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		resps = append(resps, resp)
	}
}

func run(t *testing.T, deps Deps, in io.Reader, opts ...Option) ([]rpcResponse, *Session) {
	t.Helper()
	var out bytes.Buffer
	s := New(in, &out, deps, opts...)
	require.NoError(t, s.Run(context.Background()))
	return readResponses(t, &out), s
}

func resolverDeps() Deps {
	return Deps{Completer: completion.NewResolver(engine.NewVersion(5, 3, 0, ""), knowledge.Build(), nil)}
}

type recordingActions struct {
	calls []string
	args  []string
	err   error
}

func (r *recordingActions) RunAction(_ context.Context, action string, params json.RawMessage) (string, error) {
	r.calls = append(r.calls, action)
	r.args = append(r.args, string(params))
	if r.err != nil {
		return "", r.err
	}
	return "// ran " + action, nil
}

type panicCompleter struct{}

func (panicCompleter) Complete(string, string) []completion.Candidate { panic("boom") }

// --- initialize ---

func TestInitialize_EchoesIDAndAdvertisesCommands(t *testing.T) {
	resps, _ := run(t, Deps{Version: "1.2.3"}, frames(`{"jsonrpc":"2.0","id":42,"method":"initialize","params":{}}`))
	require.Len(t, resps, 1)
	assert.Equal(t, "42", string(resps[0].ID))

	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(resps[0].Result, &result))
	assert.Equal(t, 1, result.Capabilities.TextDocumentSync)
	assert.Equal(t, []string{".", "::", "U", "A", "F"}, result.Capabilities.CompletionProvider.TriggerCharacters)
	assert.Equal(t, []string{
		"unreal.generateUClass",
		"unreal.generateBlueprintFunction",
		"unreal.syncHeaderSource",
		"unreal.analyzeLogs",
		"unreal.interpretErrors",
	}, result.Capabilities.ExecuteCommandProvider.Commands)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "1.2.3", result.ServerInfo.Version)
}

func TestInitialize_StringID(t *testing.T) {
	resps, _ := run(t, Deps{}, frames(`{"jsonrpc":"2.0","id":"init-1","method":"initialize"}`))
	require.Len(t, resps, 1)
	assert.Equal(t, `"init-1"`, string(resps[0].ID))
}

// --- documents ---

func TestDidOpenThenDidChange_UsesFirstChange(t *testing.T) {
	resps, s := run(t, Deps{}, frames(
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.h","text":"X"}}}`,
		`{"jsonrpc":"2.0","method":"textDocument/didChange","params":{"textDocument":{"uri":"file:///a.h"},"contentChanges":[{"text":"Y"},{"text":"Z"}]}}`,
	))
	assert.Empty(t, resps)
	text, ok := s.Document("file:///a.h")
	require.True(t, ok)
	assert.Equal(t, "Y", text)
}

func TestDidChange_EmptyChangesKeepsText(t *testing.T) {
	_, s := run(t, Deps{}, frames(
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"u","text":"X"}}}`,
		`{"jsonrpc":"2.0","method":"textDocument/didChange","params":{"textDocument":{"uri":"u"},"contentChanges":[]}}`,
	))
	text, _ := s.Document("u")
	assert.Equal(t, "X", text)
}

func TestDidOpen_TextWithNewlines(t *testing.T) {
	doc := "line1\nline2\r\n\r\nContent-Length: 5\n"
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/didOpen",
		"params":  map[string]any{"textDocument": map[string]any{"uri": "u", "text": doc}},
	})
	require.NoError(t, err)

	_, s := run(t, Deps{}, frames(string(body)))
	text, _ := s.Document("u")
	assert.Equal(t, doc, text)
}

// --- robustness ---

func TestMalformedJSON_ThenInitialize_OneResponse(t *testing.T) {
	resps, _ := run(t, Deps{}, frames(
		`{"jsonrpc":"2.0","id":1,"method":`,
		`{"jsonrpc":"2.0","id":2,"method":"initialize"}`,
	))
	require.Len(t, resps, 1)
	assert.Equal(t, "2", string(resps[0].ID))
}

func TestBadHeader_Skipped(t *testing.T) {
	in := strings.NewReader("Content-Length: nope\r\n\r\n" + frame(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	resps, _ := run(t, Deps{}, in)
	require.Len(t, resps, 1)
}

func TestUnknownMethod_SilentByDefault(t *testing.T) {
	resps, _ := run(t, Deps{}, frames(
		`{"jsonrpc":"2.0","id":1,"method":"textDocument/hover","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"initialize"}`,
	))
	require.Len(t, resps, 1)
	assert.Equal(t, "2", string(resps[0].ID))
}

func TestUnknownMethod_StrictErrors(t *testing.T) {
	resps, _ := run(t, Deps{}, frames(
		`{"jsonrpc":"2.0","id":1,"method":"textDocument/hover","params":{}}`,
		`{"jsonrpc":"2.0","method":"$/cancelRequest","params":{}}`,
	), WithStrictErrors(true))
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, protocol.CodeMethodNotFound, resps[0].Error.Code)
}

func TestHandlerPanic_Recovered(t *testing.T) {
	resps, _ := run(t, Deps{Completer: panicCompleter{}}, frames(
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"u","text":"U"}}}`,
		`{"jsonrpc":"2.0","id":1,"method":"textDocument/completion","params":{"textDocument":{"uri":"u"},"position":{"line":0,"character":1}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"initialize"}`,
	))
	require.Len(t, resps, 1)
	assert.Equal(t, "2", string(resps[0].ID))
}

// --- completion ---

func TestCompletion_UnknownURINoResponse(t *testing.T) {
	resps, _ := run(t, resolverDeps(), frames(
		`{"jsonrpc":"2.0","id":1,"method":"textDocument/completion","params":{"textDocument":{"uri":"nope"},"position":{"line":0,"character":0}}}`,
	))
	assert.Empty(t, resps)
}

func TestCompletion_MembersAfterScope(t *testing.T) {
	resps, _ := run(t, resolverDeps(), frames(
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"u","text":"void F()\n{\n\tAActor::GetActorL\n}"}}}`,
		`{"jsonrpc":"2.0","id":7,"method":"textDocument/completion","params":{"textDocument":{"uri":"u"},"position":{"line":2,"character":18}}}`,
	))
	require.Len(t, resps, 1)
	var items []protocol.CompletionItem
	require.NoError(t, json.Unmarshal(resps[0].Result, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "GetActorLocation", items[0].Label)
	assert.Equal(t, completion.KindMethod, items[0].Kind)
	assert.Equal(t, "AActor::GetActorLocation (UE 5.3.0)", items[0].Detail)
}

func TestCompletion_EmptyResultIsArray(t *testing.T) {
	resps, _ := run(t, resolverDeps(), frames(
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"u","text":"zzz"}}}`,
		`{"jsonrpc":"2.0","id":1,"method":"textDocument/completion","params":{"textDocument":{"uri":"u"},"position":{"line":0,"character":3}}}`,
	))
	require.Len(t, resps, 1)
	assert.Equal(t, "[]", string(resps[0].Result))
}

// --- executeCommand ---

func TestExecuteCommand_ForwardsFirstArgument(t *testing.T) {
	actions := &recordingActions{}
	resps, _ := run(t, Deps{Actions: actions}, frames(
		`{"jsonrpc":"2.0","id":3,"method":"workspace/executeCommand","params":{"command":"unreal.generateUClass","arguments":[{"className":"AFoo"},{"ignored":true}]}}`,
		`{"jsonrpc":"2.0","id":4,"method":"workspace/executeCommand","params":{"command":"unreal.analyzeLogs"}}`,
	))
	require.Len(t, resps, 2)
	assert.Equal(t, []string{"generateUClass", "analyzeLogs"}, actions.calls)
	assert.JSONEq(t, `{"className":"AFoo"}`, actions.args[0])
	assert.Equal(t, `{}`, actions.args[1])

	var text string
	require.NoError(t, json.Unmarshal(resps[0].Result, &text))
	assert.Equal(t, "// ran generateUClass", text)
}

func TestExecuteCommand_UnknownCommandNoResponse(t *testing.T) {
	actions := &recordingActions{}
	resps, _ := run(t, Deps{Actions: actions}, frames(
		`{"jsonrpc":"2.0","id":5,"method":"workspace/executeCommand","params":{"command":"unreal.doesNotExist","arguments":[{}]}}`,
		`{"jsonrpc":"2.0","id":6,"method":"workspace/executeCommand","params":{"command":"generateUClass","arguments":[{}]}}`,
	))
	assert.Empty(t, resps)
	assert.Empty(t, actions.calls)
}

func TestExecuteCommand_UnknownCommandStrict(t *testing.T) {
	resps, _ := run(t, Deps{Actions: &recordingActions{}}, frames(
		`{"jsonrpc":"2.0","id":5,"method":"workspace/executeCommand","params":{"command":"unreal.doesNotExist"}}`,
	), WithStrictErrors(true))
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, protocol.CodeMethodNotFound, resps[0].Error.Code)
}

func TestExecuteCommand_ActionErrorBecomesText(t *testing.T) {
	resps, _ := run(t, Deps{Actions: &recordingActions{err: errors.New("no project")}}, frames(
		`{"jsonrpc":"2.0","id":9,"method":"workspace/executeCommand","params":{"command":"unreal.interpretErrors","arguments":[{}]}}`,
	))
	require.Len(t, resps, 1)
	var text string
	require.NoError(t, json.Unmarshal(resps[0].Result, &text))
	assert.Equal(t, "// Error: no project", text)
}

// --- lifecycle ---

func TestShutdownExit(t *testing.T) {
	var out bytes.Buffer
	in := frames(
		`{"jsonrpc":"2.0","id":1,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
		`{"jsonrpc":"2.0","id":2,"method":"initialize"}`,
	)
	s := New(in, &out, Deps{})
	require.NoError(t, s.Run(context.Background()))

	resps := readResponses(t, &out)
	require.Len(t, resps, 1)
	assert.Equal(t, "1", string(resps[0].ID))
	assert.Equal(t, "null", string(resps[0].Result))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(frames(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`), io.Discard, Deps{})
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestActionFor(t *testing.T) {
	for _, a := range Actions {
		assert.Equal(t, a, actionFor(CommandPrefix+a))
	}
	assert.Empty(t, actionFor("unreal.nope"))
	assert.Empty(t, actionFor("analyzeLogs"))
}
