package responder_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/JaimeStill/beacon/internal/responder"
)

func TestComposePrompt(t *testing.T) {
	t.Run("contains header and every uuid once", func(t *testing.T) {
		posts := []responder.PostRecord{
			{UUID: "8c1f0e52-post-a", Fields: map[string]any{"text": "macet parah di sudirman"}},
			{UUID: "8c1f0e52-post-b", Fields: map[string]any{"text": "harga cabai naik"}},
			{UUID: "8c1f0e52-post-c", Fields: map[string]any{"text": "taman baru di cibubur"}},
		}

		got := responder.ComposePrompt(posts)

		if !strings.HasPrefix(got, responder.ClassifyHeader) {
			t.Error("prompt does not start with the classification header")
		}
		for _, p := range posts {
			if n := strings.Count(got, p.UUID); n != 1 {
				t.Errorf("uuid %s appears %d times, want 1", p.UUID, n)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		posts := []responder.PostRecord{
			{UUID: "p1", Fields: map[string]any{"text": "a", "likes": 3, "author": "x"}},
			{UUID: "p2", Fields: map[string]any{"text": "b", "shares": 9}},
		}

		first := responder.ComposePrompt(posts)
		for range 10 {
			if got := responder.ComposePrompt(posts); got != first {
				t.Fatal("ComposePrompt output differs between calls")
			}
		}
	})

	t.Run("scenario: single post rendered after marker", func(t *testing.T) {
		posts := []responder.PostRecord{
			{UUID: "p1", Fields: map[string]any{"text": "jalan rusak di jakarta selatan"}},
		}

		got := responder.ComposePrompt(posts)

		if !strings.Contains(got, "p1") {
			t.Error("missing uuid p1")
		}
		if !strings.Contains(got, "Topic Classification") {
			t.Error("missing Topic Classification guideline")
		}

		idx := strings.LastIndex(got, responder.ArticlesMarker)
		if idx < 0 {
			t.Fatal("missing articles marker")
		}

		tail := strings.TrimSpace(got[idx+len(responder.ArticlesMarker):])
		if tail != responder.RenderPosts(posts) {
			t.Errorf("tail = %q, want rendered posts", tail)
		}
		if !strings.HasSuffix(got, responder.RenderPosts(posts)) {
			t.Error("prompt does not end with the rendered posts")
		}
	})

	t.Run("empty and malformed entries accepted", func(t *testing.T) {
		got := responder.ComposePrompt([]responder.PostRecord{{}})
		if !strings.HasSuffix(got, `[{"uuid":""}]`) {
			t.Errorf("unexpected rendering: %q", got[len(responder.ClassifyHeader):])
		}

		got = responder.ComposePrompt(nil)
		if !strings.HasSuffix(got, "[]") {
			t.Errorf("unexpected rendering of nil posts: %q", got[len(responder.ClassifyHeader):])
		}
	})

	t.Run("header lists every category", func(t *testing.T) {
		groups := [][]string{
			responder.Topics,
			responder.Sentiments,
			responder.Audiences,
			responder.Regions,
		}
		for _, group := range groups {
			for _, v := range group {
				if !strings.Contains(responder.ClassifyHeader, "- "+v) {
					t.Errorf("header missing category %q", v)
				}
			}
		}

		fields := []string{
			"uuid", "topic_classification", "urgency_level", "sentiment",
			"target_audience", "affected_region", "contextual_content", "contextual_keywords",
		}
		for _, f := range fields {
			if !strings.Contains(responder.ClassifyHeader, `"`+f+`"`) {
				t.Errorf("header missing output field %q", f)
			}
		}
	})
}

func TestRenderPosts(t *testing.T) {
	t.Run("uuid shadows field of the same name", func(t *testing.T) {
		posts := []responder.PostRecord{
			{UUID: "real", Fields: map[string]any{"uuid": "shadowed", "text": "x"}},
		}

		got := responder.RenderPosts(posts)
		if strings.Contains(got, "shadowed") {
			t.Errorf("field uuid not shadowed: %s", got)
		}
		if !strings.Contains(got, `"uuid":"real"`) {
			t.Errorf("missing record uuid: %s", got)
		}
	})

	t.Run("html characters are not escaped", func(t *testing.T) {
		posts := []responder.PostRecord{
			{UUID: "p1", Fields: map[string]any{"text": "banjir & macet <kemang>"}},
		}

		got := responder.RenderPosts(posts)
		if !strings.Contains(got, "banjir & macet <kemang>") {
			t.Errorf("text was escaped: %s", got)
		}
	})
}

func TestPostRecordJSON(t *testing.T) {
	var posts []responder.PostRecord
	input := `[{"uuid":"p1","text":"jalan rusak","likes":120},{"text":"no id"},{"uuid":null,"text":"null id"},{"uuid":42}]`

	if err := json.Unmarshal([]byte(input), &posts); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if len(posts) != 4 {
		t.Fatalf("got %d posts, want 4", len(posts))
	}
	if posts[0].UUID != "p1" {
		t.Errorf("UUID = %q, want p1", posts[0].UUID)
	}
	if _, ok := posts[0].Fields["uuid"]; ok {
		t.Error("uuid should not remain in Fields")
	}
	if posts[0].Fields["text"] != "jalan rusak" {
		t.Errorf("text = %v", posts[0].Fields["text"])
	}
	if posts[1].UUID != "" {
		t.Errorf("missing uuid should decode empty, got %q", posts[1].UUID)
	}
	if posts[2].UUID != "" {
		t.Errorf("null uuid should decode empty, got %q", posts[2].UUID)
	}
	if _, ok := posts[2].Fields["uuid"]; ok {
		t.Error("null uuid should not remain in Fields")
	}
	if posts[3].UUID != "42" {
		t.Errorf("numeric uuid = %q, want 42", posts[3].UUID)
	}

	if got := responder.RenderPosts(posts[:1]); got != `[{"likes":120,"text":"jalan rusak","uuid":"p1"}]` {
		t.Errorf("RenderPosts = %s", got)
	}
}

func TestComposeSummaryPrompt(t *testing.T) {
	posts := []responder.SummaryPost{
		{FullText: "first post", ContextualContent: "first context"},
		{FullText: "second post", ContextualContent: "second context"},
	}

	got := responder.ComposeSummaryPrompt(posts)

	if !strings.HasPrefix(got, responder.SummaryHeader) {
		t.Error("missing summary header")
	}
	want := "Post 1:\nfirst post\nContext: first context\n\nPost 2:\nsecond post\nContext: second context"
	if !strings.HasSuffix(got, want) {
		t.Errorf("summary body = %q, want suffix %q", got[len(responder.SummaryHeader):], want)
	}
}

func TestDecodePosts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"array", `[{"uuid":"a"},{"uuid":"b"}]`, []string{"a", "b"}, false},
		{"wrapped", ` {"posts":[{"uuid":"c","text":"banjir"}]}`, []string{"c"}, false},
		{"numeric uuid", `[{"uuid":42}]`, []string{"42"}, false},
		{"empty array", `[]`, []string{}, false},
		{"malformed", `[{"uuid":`, nil, true},
		{"wrong shape", `"posts"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := responder.DecodePosts(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodePosts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(posts) != len(tt.want) {
				t.Fatalf("got %d posts, want %d", len(posts), len(tt.want))
			}
			for i, id := range tt.want {
				if posts[i].UUID != id {
					t.Errorf("posts[%d].UUID = %q, want %q", i, posts[i].UUID, id)
				}
			}
		})
	}
}
