package responder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// PostRecord is one social-media post submitted for classification. UUID
// identifies the post in the model's reply; Fields carries whatever descriptive
// data the caller supplies and is embedded verbatim.
type PostRecord struct {
	UUID   string
	Fields map[string]any
}

// MarshalJSON flattens the record into a single object with uuid alongside the
// descriptive fields. A "uuid" entry in Fields is shadowed by UUID.
func (p PostRecord) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		obj[k] = v
	}
	obj["uuid"] = p.UUID
	return encode(obj)
}

func (p *PostRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return err
	}

	p.UUID = ""
	if v, ok := obj["uuid"]; ok {
		if v != nil {
			p.UUID = fmt.Sprint(v)
		}
		delete(obj, "uuid")
	}
	p.Fields = obj
	return nil
}

// DecodePosts reads either a JSON array of posts or an object with a "posts"
// array.
func DecodePosts(r io.Reader) ([]PostRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Posts []PostRecord `json:"posts"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode posts: %w", err)
		}
		return wrapped.Posts, nil
	}

	var posts []PostRecord
	if err := json.Unmarshal(trimmed, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

// RenderPosts renders posts as a compact JSON array in input order. Values that
// cannot be encoded fall back to their fmt representation so rendering never fails.
func RenderPosts(posts []PostRecord) string {
	if posts == nil {
		posts = []PostRecord{}
	}

	data, err := encode(posts)
	if err != nil {
		return fmt.Sprintf("%v", posts)
	}
	return string(data)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
