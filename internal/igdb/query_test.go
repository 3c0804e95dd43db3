package igdb

import "testing"

func TestQueryBuilder(t *testing.T) {
	tests := []struct {
		name  string
		build func() string
		want  string
	}{
		{
			name: "full query",
			build: func() string {
				return new(QueryBuilder).
					Select("id", "name").
					Where("id = 42").
					Sort("first_release_date", "desc").
					Limit(5).
					Offset(10).
					Build()
			},
			want: "fields id, name; where id = 42; sort first_release_date desc; limit 5; offset 10;",
		},
		{
			name: "search term is quoted and escaped",
			build: func() string {
				return new(QueryBuilder).
					Select("id").
					Search(`The "Best" Game`).
					Limit(50).
					Build()
			},
			want: `fields id; search "The \"Best\" Game"; limit 50;`,
		},
		{
			name: "clauses joined with ampersand",
			build: func() string {
				return new(QueryBuilder).
					Select("id").
					Where("id = 1").
					Where("category = 0").
					Build()
			},
			want: "fields id; where id = 1 & category = 0;",
		},
		{
			name: "zero limit is kept",
			build: func() string {
				return new(QueryBuilder).Select("id").Limit(0).Build()
			},
			want: "fields id; limit 0;",
		},
		{
			name:  "empty builder",
			build: func() string { return new(QueryBuilder).Build() },
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build(); got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCoverURL(t *testing.T) {
	if got := CoverURL("co1xyz"); got != "https://images.igdb.com/igdb/image/upload/t_cover_big/co1xyz.jpg" {
		t.Errorf("CoverURL = %q", got)
	}
	if got := CoverURL(""); got != "" {
		t.Errorf("CoverURL(empty) = %q, want empty", got)
	}
}
