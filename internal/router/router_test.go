package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"petora-connect/internal/client"
	"petora-connect/internal/domain/posts"
	"petora-connect/internal/ports/changefeed"
	"petora-connect/internal/router"
	"petora-connect/internal/viewstate"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{AdminIDs: []string{"admin-1"}}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_ListingOwnership(t *testing.T) {
	ts := newServer(t)

	ownerID := "owner-1"
	otherID := "other-1"

	// 1) Sale con precio => 201
	petID := createListing(t, ts.URL, ownerID, map[string]any{
		"name":        "Buddy",
		"species":     "Dog",
		"breed":       "Golden Retriever",
		"age":         "2 years",
		"gender":      "Male",
		"location":    "Springfield",
		"listingType": "Sale",
		"price":       500,
		"description": "Friendly and playful dog",
	})

	// 2) Adoption con precio => 400
	{
		st, body := doReq(t, ts.URL, "POST", "/pets", ownerID, map[string]any{
			"name":        "Buddy",
			"species":     "Dog",
			"breed":       "Golden Retriever",
			"age":         "2 years",
			"gender":      "Male",
			"location":    "Springfield",
			"listingType": "Adoption",
			"price":       500,
			"description": "Friendly and playful dog",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 adoption with price, got %d body=%s", st, string(body))
		}
	}

	// 3) Sin usuario => 401
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets", "", map[string]any{"name": "x"})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 anonymous create, got %d", st)
		}
	}

	// 4) Otro usuario no puede editar ni borrar
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/pets/"+petID, otherID, map[string]any{"name": "Stolen"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 patch by non-owner, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/pets/"+petID, otherID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 delete by non-owner, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/pets/"+petID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected listing still retrievable, got %d", st)
		}
	}

	// 5) Dueño pasa a Adoption limpiando el precio
	{
		st, body := doReq(t, ts.URL, "PATCH", "/pets/"+petID, ownerID, map[string]any{
			"listingType": "Adoption",
			"price":       nil,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch by owner, got %d body=%s", st, string(body))
		}
		var resp struct {
			ListingType string   `json:"listingType"`
			Price       *float64 `json:"price"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ListingType != "Adoption" || resp.Price != nil {
			t.Fatalf("unexpected patch result body=%s", string(body))
		}
	}

	// 6) Búsqueda pública
	{
		st, body := doReq(t, ts.URL, "GET", "/pets?search=golden&species=All", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d", st)
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 {
			t.Fatalf("expected 1 match, got %d body=%s", len(items), string(body))
		}
	}

	// 7) Mis publicaciones
	{
		st, body := doReq(t, ts.URL, "GET", "/me/pets", ownerID, nil)
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if st != http.StatusOK || len(items) != 1 {
			t.Fatalf("expected my listings, got %d body=%s", st, string(body))
		}
	}

	// 8) Borrar y luego 404
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/pets/"+petID, ownerID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/pets/"+petID, "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}
}

func TestHTTP_GroupMembershipAndChat(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/groups", "user-a", map[string]any{
		"name":        "Doodle Lovers",
		"description": "All about doodles and their humans",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create group, got %d body=%s", st, string(body))
	}
	var g struct {
		ID          string   `json:"id"`
		MemberIDs   []string `json:"memberIds"`
		MemberCount int      `json:"memberCount"`
	}
	_ = json.Unmarshal(body, &g)
	if g.MemberCount != 1 || len(g.MemberIDs) != 1 {
		t.Fatalf("expected owner as only member body=%s", string(body))
	}

	// No miembro no puede escribir
	st, _ = doReq(t, ts.URL, "POST", "/groups/"+g.ID+"/messages", "user-b", map[string]any{"text": "hola"})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 message by non-member, got %d", st)
	}

	// B se une dos veces: el contador queda en 2
	for i, wantJoined := range []bool{true, false} {
		st, body := doReq(t, ts.URL, "POST", "/groups/"+g.ID+"/join", "user-b", nil)
		if st != http.StatusOK {
			t.Fatalf("join #%d: expected 200, got %d", i, st)
		}
		var resp struct {
			Group struct {
				MemberCount int `json:"memberCount"`
			} `json:"group"`
			Joined bool `json:"joined"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Joined != wantJoined || resp.Group.MemberCount != 2 {
			t.Fatalf("join #%d: unexpected body=%s", i, string(body))
		}
	}

	for _, text := range []string{"first", "second"} {
		st, body := doReq(t, ts.URL, "POST", "/groups/"+g.ID+"/messages", "user-b", map[string]any{"text": text})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 message, got %d body=%s", st, string(body))
		}
	}
	st, body = doReq(t, ts.URL, "GET", "/groups/"+g.ID+"/messages", "user-a", nil)
	var msgs []struct {
		Text string `json:"text"`
	}
	_ = json.Unmarshal(body, &msgs)
	if st != http.StatusOK || len(msgs) != 2 || msgs[0].Text != "first" {
		t.Fatalf("unexpected messages %d body=%s", st, string(body))
	}

	// Solo admin borra
	st, _ = doReq(t, ts.URL, "DELETE", "/groups/"+g.ID, "user-a", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 delete by owner, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "DELETE", "/groups/"+g.ID, "admin-1", nil)
	if st != http.StatusNoContent {
		t.Fatalf("expected 204 delete by admin, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/groups/"+g.ID, "user-a", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", st)
	}
}

func TestHTTP_ProfilesAndAdmin(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/me", "user-a", nil)
	var me struct {
		UserID      string `json:"userId"`
		DisplayName string `json:"displayName"`
	}
	_ = json.Unmarshal(body, &me)
	if st != http.StatusOK || me.UserID != "user-a" || me.DisplayName == "" {
		t.Fatalf("unexpected /me %d body=%s", st, string(body))
	}

	st, _ = doReq(t, ts.URL, "GET", "/users", "user-a", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 /users by non-admin, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/users", "admin-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 /users by admin, got %d", st)
	}
}

func TestHTTP_UploadAndServeImage(t *testing.T) {
	ts := newServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "buddy.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write([]byte("\x89PNG fake"))
	_ = mw.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Debug-User-ID", "user-a")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 upload, got %d body=%s", res.StatusCode, string(body))
	}
	var up struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(body, &up)

	st, img := doReq(t, ts.URL, "GET", up.URL, "", nil)
	if st != http.StatusOK || string(img) != "\x89PNG fake" {
		t.Fatalf("expected image back, got %d", st)
	}
}

func TestHTTP_HealthAndChatbotWithoutModel(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health %d %s", st, string(body))
	}
	st, _ = doReq(t, ts.URL, "POST", "/chatbot", "user-a", map[string]any{"question": "How often should I feed my puppy?"})
	if st != http.StatusBadGateway {
		t.Fatalf("expected 502 without model, got %d", st)
	}
}

func TestHTTP_MetricsAndSwagger(t *testing.T) {
	ts := newServer(t)

	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("unexpected health %d", st)
	}
	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), "petora_http_requests_total") {
		t.Fatalf("unexpected metrics %d %s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 doc.json, got %d", st)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("doc.json: %v", err)
	}
	if doc.Info.Title != "Petora Connect API" {
		t.Fatalf("unexpected title %q", doc.Info.Title)
	}
	if _, ok := doc.Paths["/pets"]; !ok {
		t.Fatalf("doc.json without /pets")
	}

	if st, _ := doReq(t, ts.URL, "GET", "/swagger/index.html", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 swagger ui, got %d", st)
	}
}

// El cliente tipado + viewstate contra el servidor real.
func TestClient_PostCardConvergesWithStream(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()

	st, body := doReq(t, ts.URL, "POST", "/posts", "author-1", map[string]any{"body": "Look at my dog!"})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 post, got %d body=%s", st, string(body))
	}
	var p posts.Post
	_ = json.Unmarshal(body, &p)

	c, err := client.New(ts.URL, client.Options{DebugUserID: "fan-1"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	stream, err := c.StreamPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	var notes []viewstate.Notification
	card := viewstate.NewPostCard(p, "fan-1", c, viewstate.NotifierFunc(func(n viewstate.Notification) {
		notes = append(notes, n)
	}))

	if err := card.ToggleLike(ctx); err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if s := card.State(); !s.Liked || s.Count != 1 {
		t.Fatalf("unexpected optimistic state %+v", s)
	}
	if len(notes) != 1 || notes[0].Outcome != viewstate.Succeeded {
		t.Fatalf("expected one success notification, got %+v", notes)
	}

	select {
	case ev := <-stream.Events():
		if ev.Type != changefeed.Updated || ev.ID != p.ID {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change event received")
	}

	// Toggle otra vez vuelve al estado inicial en servidor y cliente.
	if err := card.ToggleLike(ctx); err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	st, body = doReq(t, ts.URL, "GET", "/posts/"+p.ID, "", nil)
	var after posts.Post
	_ = json.Unmarshal(body, &after)
	if st != http.StatusOK || after.LikeCount != 0 || card.State().Count != 0 {
		t.Fatalf("expected like count back to 0, got %d body=%s", st, string(body))
	}
}

func createListing(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create listing, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create listing: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
