package outreach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/pkg/apiclient"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("or-token", WithBaseURL(srv.URL))
}

func TestFindProspectByEmail(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID int64
	}{
		{name: "found", body: `{"data":[{"id":55,"type":"prospect","attributes":{"firstName":"Jane"}}]}`, wantID: 55},
		{name: "none", body: `{"data":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/prospects", r.URL.Path)
				assert.Equal(t, "jane@acme.com", r.URL.Query().Get("filter[emails]"))
				assert.Equal(t, "Bearer or-token", r.Header.Get("Authorization"))
				assert.Equal(t, mediaType, r.Header.Get("Accept"))
				w.Write([]byte(tt.body))
			})

			p, err := c.FindProspectByEmail(context.Background(), "jane@acme.com")
			require.NoError(t, err)
			if tt.wantID == 0 {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.wantID, p.ID)
			assert.Equal(t, "Jane", p.Attributes.FirstName)
		})
	}
}

func TestCreateProspect(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, mediaType, r.Header.Get("Content-Type"))
		var body struct {
			Data struct {
				Type       string         `json:"type"`
				ID         *int64         `json:"id"`
				Attributes map[string]any `json:"attributes"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "prospect", body.Data.Type)
		assert.Nil(t, body.Data.ID)
		assert.Equal(t, []any{"jane@acme.com"}, body.Data.Attributes["emails"])
		assert.Equal(t, "Growth Summit", body.Data.Attributes["event"])
		assert.NotContains(t, body.Data.Attributes, "title")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":77,"type":"prospect"}}`))
	})

	p, err := c.CreateProspect(context.Background(), ProspectAttributes{
		FirstName: "Jane",
		Emails:    []string{"jane@acme.com"},
		Event:     "Growth Summit",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), p.ID)
}

func TestCreateProspect_MissingID(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	})

	_, err := c.CreateProspect(context.Background(), ProspectAttributes{FirstName: "Jane"})
	var protoErr *apiclient.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "data.id", protoErr.Field)
}

func TestAddToSequence(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sequenceStates", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		data := body["data"].(map[string]any)
		assert.Equal(t, "sequenceState", data["type"])
		rel := data["relationships"].(map[string]any)
		assert.Equal(t, map[string]any{"data": map[string]any{"type": "mailbox", "id": float64(3)}}, rel["mailbox"])
		assert.Equal(t, map[string]any{"data": map[string]any{"type": "sequence", "id": float64(2)}}, rel["sequence"])
		w.Write([]byte(`{"data":{"id":900,"type":"sequenceState"}}`))
	})

	st, err := c.AddToSequence(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(900), st.ID)
}

func TestAddToSequence_Error(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":[{"title":"already in sequence"}]}`))
	})

	_, err := c.AddToSequence(context.Background(), 1, 2, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add prospect 1 to sequence 2")
}
