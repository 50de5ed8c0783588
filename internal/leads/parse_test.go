package leads

import (
	"reflect"
	"testing"
)

func TestParseText_StructuredTier(t *testing.T) {
	t.Parallel()

	t.Run("array of objects round-trips in order", func(t *testing.T) {
		t.Parallel()
		got := ParseText(`[{"name":"A"},{"name":"B"}]`)
		want := Collection{
			{"name": "A"},
			{"name": "B"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("single object wraps into one record", func(t *testing.T) {
		t.Parallel()
		got := ParseText(`{"name":"A","email":"a@example.com"}`)
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
		if got[0]["name"] != "A" || got[0]["email"] != "a@example.com" {
			t.Fatalf("record mismatch: %v", got[0])
		}
	})

	t.Run("scalar values keep their decoded types", func(t *testing.T) {
		t.Parallel()
		got := ParseText(`[{"name":"A","age":30,"active":true}]`)
		if got[0]["age"] != float64(30) {
			t.Fatalf("age = %v (%T), want 30", got[0]["age"], got[0]["age"])
		}
		if got[0]["active"] != true {
			t.Fatalf("active = %v", got[0]["active"])
		}
	})

	t.Run("nested values survive", func(t *testing.T) {
		t.Parallel()
		got := ParseText(`[{"name":"A","tags":["pm","tech"]}]`)
		tags, ok := got[0]["tags"].([]any)
		if !ok || len(tags) != 2 {
			t.Fatalf("tags = %v", got[0]["tags"])
		}
	})

	t.Run("empty array yields empty collection", func(t *testing.T) {
		t.Parallel()
		got := ParseText(`[]`)
		if len(got) != 0 {
			t.Fatalf("expected empty collection, got %v", got)
		}
	})

	t.Run("mixed array falls through", func(t *testing.T) {
		t.Parallel()
		got := ParseText(`[{"a":1}, 5]`)
		want := Collection{{"input": `[{"a":1}, 5]`}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("bare scalar falls through to line fallback", func(t *testing.T) {
		t.Parallel()
		got := ParseText(`42`)
		want := Collection{{"input": "42"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
}

func TestParseText_TabularTier(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  Collection
	}{
		{
			name:  "comma separated",
			input: "name,age\nA,30\nB,40",
			want:  Collection{{"name": "A", "age": "30"}, {"name": "B", "age": "40"}},
		},
		{
			name:  "tab separated",
			input: "name\tage\nA\t30",
			want:  Collection{{"name": "A", "age": "30"}},
		},
		{
			name:  "semicolon separated",
			input: "name;city\nA;Berlin",
			want:  Collection{{"name": "A", "city": "Berlin"}},
		},
		{
			name:  "pipe separated",
			input: "name|role\nA|PM",
			want:  Collection{{"name": "A", "role": "PM"}},
		},
		{
			name:  "short rows pad to header width",
			input: "a,b,c\n1,2",
			want:  Collection{{"a": "1", "b": "2", "c": ""}},
		},
		{
			name:  "quoted fields keep embedded delimiters",
			input: "name,bio\n\"Smith, John\",\"likes, commas\"",
			want:  Collection{{"name": "Smith, John", "bio": "likes, commas"}},
		},
		{
			name:  "headers are trimmed",
			input: " name , age \nA,30",
			want:  Collection{{"name": "A", "age": "30"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseText(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("every record has exactly the header width", func(t *testing.T) {
		t.Parallel()
		got := ParseText("a,b,c\n1,2,3\n4,5\n6")
		for i, rec := range got {
			if len(rec) != 3 {
				t.Fatalf("record %d has %d fields, want 3: %v", i, len(rec), rec)
			}
		}
	})

	t.Run("row wider than header disqualifies the tier", func(t *testing.T) {
		t.Parallel()
		got := ParseText("a,b\n1,2,3")
		want := Collection{{"input": "a,b"}, {"input": "1,2,3"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("header-only line is not a table", func(t *testing.T) {
		t.Parallel()
		got := ParseText("name,age")
		want := Collection{{"input": "name,age"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
}

func TestParseText_LineFallback(t *testing.T) {
	t.Parallel()

	t.Run("one record per non-empty line", func(t *testing.T) {
		t.Parallel()
		got := ParseText("hello\nworld")
		want := Collection{{"input": "hello"}, {"input": "world"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("blank lines and padding are dropped", func(t *testing.T) {
		t.Parallel()
		got := ParseText("  alpha  \n\n\r\n beta\n")
		want := Collection{{"input": "alpha"}, {"input": "beta"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("order is preserved", func(t *testing.T) {
		t.Parallel()
		got := ParseText("one\ntwo\nthree\nfour")
		if len(got) != 4 {
			t.Fatalf("expected 4 records, got %d", len(got))
		}
		for i, want := range []string{"one", "two", "three", "four"} {
			if got[i]["input"] != want {
				t.Fatalf("record %d = %v, want %q", i, got[i], want)
			}
		}
	})
}

func TestParseText_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "\n\n", " \t \r\n "} {
		got := ParseText(input)
		if got == nil {
			t.Fatalf("ParseText(%q) returned nil, want empty collection", input)
		}
		if len(got) != 0 {
			t.Fatalf("ParseText(%q) = %v, want empty", input, got)
		}
	}
}

func TestParseText_MalformedStructuredNeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"name": "A", "age}`,
		`[{"name":"A"},`,
		`{{{`,
		"\x00\x01\x02",
		`"just a string"`,
	}
	for _, input := range inputs {
		got := ParseText(input)
		if got == nil {
			t.Fatalf("ParseText(%q) returned nil", input)
		}
	}
}
