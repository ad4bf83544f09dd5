package transport_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archith7/MediSaarthi/internal/testutil"
	"github.com/Archith7/MediSaarthi/internal/transport"
)

func newClient(t *testing.T, api *testutil.FakeAPI) *transport.Client {
	t.Helper()
	client, err := transport.NewClient(api.URL(), nil)
	require.NoError(t, err)
	return client
}

func TestNewClient_RejectsBadBase(t *testing.T) {
	tests := []struct {
		name string
		base string
	}{
		{name: "no scheme", base: "localhost:8000"},
		{name: "ftp scheme", base: "ftp://example.com"},
		{name: "garbage", base: "://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transport.NewClient(tt.base, nil)
			assert.Error(t, err)
		})
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client, err := transport.NewClient("http://localhost:8000/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", client.BaseURL())
}

func TestCall_SendsJSONBody(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	client := newClient(t, api)

	resp, err := client.Call(context.Background(), http.MethodPost, "/api/query", map[string]string{"query": "glucose"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.Envelope().Succeeded())

	reqs := api.RequestsTo("/api/query")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"query":"glucose"}`, reqs[0].Body)
}

func TestCall_NonSuccessStatusStillParsed(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Handle(http.MethodPost, "/api/query", testutil.JSON(http.StatusBadRequest, map[string]any{
		"detail": "Failed to parse query",
	}))
	client := newClient(t, api)

	resp, err := client.Call(context.Background(), http.MethodPost, "/api/query", map[string]string{"query": "??"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env := resp.Envelope()
	assert.False(t, env.Succeeded())
	assert.Equal(t, "Failed to parse query", env.Reason())

	checkErr := resp.Check()
	require.Error(t, checkErr)
	assert.True(t, transport.IsApplication(checkErr))
	assert.False(t, transport.IsTransport(checkErr))
}

func TestCall_MalformedBodyIsTransportError(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/api/stats", testutil.Raw(http.StatusBadGateway, "<html>bad gateway</html>"))
	client := newClient(t, api)

	_, err := client.Call(context.Background(), http.MethodGet, "/api/stats", nil)
	require.Error(t, err)
	assert.True(t, transport.IsTransport(err))
	assert.True(t, errors.Is(err, transport.ErrMalformedResponse))
}

func TestCall_UnreachableServer(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	client := newClient(t, api)
	api.Server.Close()

	_, err := client.Call(context.Background(), http.MethodGet, "/api/stats", nil)
	require.Error(t, err)

	var te *transport.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.MethodGet, te.Op)
	assert.Equal(t, "/api/stats", te.Path)
}

func TestCall_DroppedConnection(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/api/patients", testutil.DropConnection)
	client := newClient(t, api)

	_, err := client.Call(context.Background(), http.MethodGet, "/api/patients", nil)
	assert.True(t, transport.IsTransport(err))
}

func TestUpload_SendsMultipartFile(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	client := newClient(t, api)

	resp, err := client.Upload(context.Background(), "/api/ocr/upload", "file", "report.png", []byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	assert.NoError(t, resp.Check())
	assert.Equal(t, "Extracted lab report from report.png", resp.Envelope().Reason())

	reqs := api.RequestsTo("/api/ocr/upload")
	require.Len(t, reqs, 1)
	assert.Equal(t, "report.png", reqs[0].FileName)
}

func TestProbe_ReportsStatusOnly(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/health", testutil.Raw(http.StatusServiceUnavailable, "down"))
	client := newClient(t, api)

	status, err := client.Probe(context.Background(), "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestEnvelope_Reason(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message wins", body: `{"message":"ok","detail":"ignored"}`, want: "ok"},
		{name: "string detail", body: `{"detail":"not found"}`, want: "not found"},
		{name: "structured detail", body: `{"detail":[{"loc":["body"]}]}`, want: `[{"loc":["body"]}]`},
		{name: "nothing", body: `{}`, want: ""},
		{name: "array body", body: `[1,2]`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &transport.Response{StatusCode: http.StatusOK, Body: []byte(tt.body)}
			assert.Equal(t, tt.want, resp.Envelope().Reason())
		})
	}
}
