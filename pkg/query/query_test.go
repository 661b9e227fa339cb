package query_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/beacon/pkg/query"
)

func projection() *query.Projection {
	return query.NewProjection("classifications", "c").
		Field("id", "id").
		Field("topic", "topic").
		Field("urgency", "urgency").
		Field("target_audience", "audience").
		Field("classified_at", "classified_at")
}

func TestBuilder(t *testing.T) {
	topic := "Healthcare"
	var missing *string
	urgency := 40

	tests := []struct {
		name     string
		build    func() (string, []any)
		wantSQL  string
		wantArgs []any
	}{
		{
			name:  "no conditions uses fallback sort",
			build: query.NewBuilder(projection(), query.SortField{Field: "classified_at", Descending: true}).Build,
			wantSQL: "SELECT c.id, c.topic, c.urgency, c.target_audience, c.classified_at FROM classifications c " +
				"ORDER BY c.classified_at DESC",
		},
		{
			name: "conditions numbered in order and nils skipped",
			build: query.NewBuilder(projection()).
				WhereEquals("topic", &topic).
				WhereEquals("topic", missing).
				WhereAtLeast("urgency", &urgency).
				WhereHas("audience", "Youth").
				BuildCount,
			wantSQL:  "SELECT COUNT(*) FROM classifications c WHERE c.topic = $1 AND c.urgency >= $2 AND c.target_audience ? $3",
			wantArgs: []any{&topic, &urgency, "Youth"},
		},
		{
			name: "unmapped fields ignored",
			build: query.NewBuilder(projection()).
				WhereEquals("password", "x").
				OrderBy(query.ParseSortFields("nope,-urgency")).
				Build,
			wantSQL: "SELECT c.id, c.topic, c.urgency, c.target_audience, c.classified_at FROM classifications c " +
				"ORDER BY c.urgency DESC",
		},
		{
			name: "page",
			build: func() (string, []any) {
				return query.NewBuilder(projection()).BuildPage(3, 20)
			},
			wantSQL: "SELECT c.id, c.topic, c.urgency, c.target_audience, c.classified_at FROM classifications c " +
				"LIMIT 20 OFFSET 40",
		},
		{
			name: "single",
			build: func() (string, []any) {
				return query.NewBuilder(projection()).BuildSingle("id", "abc")
			},
			wantSQL:  "SELECT c.id, c.topic, c.urgency, c.target_audience, c.classified_at FROM classifications c WHERE c.id = $1",
			wantArgs: []any{"abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.build()
			if sql != tt.wantSQL {
				t.Errorf("sql:\n got %s\nwant %s", sql, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tt.wantArgs)) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestWhereContains(t *testing.T) {
	term := "flood"
	sql, args := query.NewBuilder(projection()).WhereContains("topic", &term).BuildCount()

	if sql != `SELECT COUNT(*) FROM classifications c WHERE c.topic ILIKE $1 ESCAPE '\'` {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 1 || args[0] != "%flood%" {
		t.Errorf("args = %v", args)
	}
}

func TestWhereContainsEscapesWildcards(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{`%`, `%\%%`},
		{`50%_off`, `%50\%\_off%`},
		{`a\b`, `%a\\b%`},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			_, args := query.NewBuilder(projection()).WhereContains("topic", &tt.term).BuildCount()
			if len(args) != 1 || args[0] != tt.want {
				t.Errorf("args = %v, want [%s]", args, tt.want)
			}
		})
	}
}

func TestBuildAggregate(t *testing.T) {
	urgency := 40
	sql, args := query.NewBuilder(projection()).
		WhereAtLeast("urgency", &urgency).
		BuildAggregate("c.topic, COUNT(*)", "", "GROUP BY c.topic")

	if sql != "SELECT c.topic, COUNT(*) FROM classifications c WHERE c.urgency >= $1 GROUP BY c.topic" {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 1 {
		t.Errorf("args = %v", args)
	}

	sql, args = query.NewBuilder(projection()).
		BuildAggregate("k.word", "CROSS JOIN LATERAL jsonb_array_elements_text(c.audience) AS k(word)", "")
	if sql != "SELECT k.word FROM classifications c CROSS JOIN LATERAL jsonb_array_elements_text(c.audience) AS k(word)" {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestParseSortFields(t *testing.T) {
	got := query.ParseSortFields(" urgency , -classified_at,,")
	want := []query.SortField{
		{Field: "urgency"},
		{Field: "classified_at", Descending: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSortFields = %+v, want %+v", got, want)
	}
	if query.ParseSortFields("") != nil {
		t.Error("empty input should yield nil")
	}
}
