package main

import (
	"bytes"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/mcncl/ido/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	squadShape   = `{squadName:string,homeTown:string,formed:int,active:bool,members:[{name:string,age:int,powers:[string]}]}`
	squadEncoded = `{"Super hero squad","Metro City",2016,+,[{"Molecule Man",29,["Radiation resistance","Turning tiny"]},{"Madame Uppercut",39,["Million tonne punch"]}]}`
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestExecute_Shape(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"JSONFile", "", []string{"shape", "-i", "testdata/squad.json"}, squadShape + "\n"},
		{"YAMLFile", "", []string{"shape", "-i", "testdata/squad.yml"}, squadShape + "\n"},
		{"JSONStdin", `[1, 2.5]`, []string{"shape"}, "[float]\n"},
		{"YAMLStdin", "- a: 1\n  b: [true]\n", []string{"shape", "--yaml"}, "[{a:int,b:[bool]}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.stdin, tt.args...)
			require.Equal(t, 0, res.code, res.stderr)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestExecute_Encode(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		res := run(t, "", "encode", "-i", "testdata/squad.json")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, squadEncoded+"\n", res.stdout)
	})

	t.Run("YAMLStdin", func(t *testing.T) {
		res := run(t, readFile(t, "testdata/squad.yml"), "encode", "--yaml")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, squadEncoded+"\n", res.stdout)
	})

	t.Run("FollowsShapeExample", func(t *testing.T) {
		doc := `{"admin": false, "age": 52, "name": "Dee \"D\""}`
		res := run(t, doc, "encode", "-s", "testdata/people.json", "--records")
		require.NotEqual(t, 0, res.code)
		assert.Contains(t, res.stderr, "--records needs a document whose root is an array")

		res = run(t, "["+doc+"]", "encode", "-s", "testdata/people.json")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, `[{"Dee \"D\"",52,}]`+"\n", res.stdout)
	})

	t.Run("Records", func(t *testing.T) {
		res := run(t, "", "encode", "--records", "-i", "testdata/people.json")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, "{\"Ann\",30,+}\n{\"Bob\",41,}\n", res.stdout)
	})

	t.Run("OutputFile", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "squad.ido")
		res := run(t, "", "encode", "-i", "testdata/squad.json", "-o", out)
		require.Equal(t, 0, res.code, res.stderr)
		assert.Empty(t, res.stdout)
		assert.Equal(t, squadEncoded+"\n", readFile(t, out))
	})
}

func TestExecute_EncodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		stdin  string
		args   []string
		stderr []string
	}{
		{
			name:   "MissingFile",
			args:   []string{"encode", "-i", "testdata/missing.json"},
			stderr: []string{"Input error: file '", "missing.json' not found", "For help, run: ido encode --help"},
		},
		{
			name:   "EmptyInput",
			stdin:  "  \n",
			args:   []string{"encode"},
			stderr: []string{"empty"},
		},
		{
			name:   "EmptyArray",
			stdin:  `{"tags": []}`,
			args:   []string{"encode"},
			stderr: []string{"Shape analysis error", "give every array at least one element"},
		},
		{
			name:   "NullField",
			stdin:  `{"name": null}`,
			args:   []string{"encode"},
			stderr: []string{"only booleans may be empty on the wire"},
		},
		{
			name:   "RecordMissingField",
			stdin:  `[{"name": "Ann", "age": 30, "admin": true}, {"name": "Bob", "admin": true}]`,
			args:   []string{"encode", "--records", "-s", "testdata/people.json"},
			stderr: []string{"Encoding error: record 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.stdin, tt.args...)
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			for _, want := range tt.stderr {
				assert.Contains(t, res.stderr, want)
			}
		})
	}
}

func TestExecute_Decode(t *testing.T) {
	t.Run("Records", func(t *testing.T) {
		res := run(t, "", "decode", "--records", "-s", "testdata/people.json", "-i", "testdata/people.ido")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t,
			`{"name":"Ann","age":30,"admin":true}`+"\n"+
				`{"name":"Bob","age":41,"admin":false}`+"\n"+
				`{"name":"Cy, Jr.","age":7,"admin":true}`+"\n",
			res.stdout)
	})

	t.Run("YAML", func(t *testing.T) {
		res := run(t, readFile(t, "testdata/people.ido"), "decode", "--records", "-s", "testdata/people.json", "--to", "yaml")
		require.Equal(t, 0, res.code, res.stderr)
		assert.True(t, strings.HasPrefix(res.stdout, "name: Ann\nage: 30\nadmin: true\n---\nname: Bob\nage: 41\nadmin: false\n---\n"), res.stdout)
		assert.Equal(t, 2, strings.Count(res.stdout, "---\n"))
	})

	t.Run("PrettyRoundTrip", func(t *testing.T) {
		res := run(t, squadEncoded+"\n", "decode", "-s", "testdata/squad.yml", "--pretty")
		require.Equal(t, 0, res.code, res.stderr)
		assert.True(t, strings.HasPrefix(res.stdout, "{\n  \"squadName\": \"Super hero squad\",\n  \"homeTown\": \"Metro City\",\n"), res.stdout)
		assert.Contains(t, res.stdout, "\n      \"powers\": [\n        \"Million tonne punch\"\n      ]\n")

		// The rendered JSON encodes back to the same text.
		again := run(t, res.stdout, "encode")
		require.Equal(t, 0, again.code, again.stderr)
		assert.Equal(t, squadEncoded+"\n", again.stdout)
	})

	t.Run("RawStrings", func(t *testing.T) {
		res := run(t, `{"say \"hi\"",1,}`, "decode", "--records", "--raw-strings", "-s", "testdata/people.json")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, `{"name":"say \\\"hi\\\"","age":1,"admin":false}`+"\n", res.stdout)
	})
}

func TestExecute_DecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		stdin  string
		args   []string
		stderr []string
	}{
		{
			name:   "BadBoolean",
			stdin:  "{\"Ann\",30,+}\n{\"Bob\",41,x}\n",
			args:   []string{"decode", "--records", "-s", "testdata/people.json"},
			stderr: []string{"Decoding error: record 2: invalid boolean sentinel at /admin", "booleans must be '+' for true or empty for false"},
		},
		{
			name:   "FieldCount",
			stdin:  `{"Ann",30}`,
			args:   []string{"decode", "--records", "-s", "testdata/people.json"},
			stderr: []string{"Decoding error: record 1: field count mismatch"},
		},
		{
			name:   "Truncated",
			stdin:  `{"Ann",30,+`,
			args:   []string{"decode", "--records", "-s", "testdata/people.json"},
			stderr: []string{"Decoding error: record 1"},
		},
		{
			name:   "RecordsNeedArrayExample",
			stdin:  squadEncoded,
			args:   []string{"decode", "--records", "-s", "testdata/squad.json"},
			stderr: []string{"--records needs a shape example whose root is an array"},
		},
		{
			name:   "MissingShapeFile",
			stdin:  squadEncoded,
			args:   []string{"decode", "-s", "testdata/nope.json"},
			stderr: []string{"nope.json' not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.stdin, tt.args...)
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			for _, want := range tt.stderr {
				assert.Contains(t, res.stderr, want)
			}
		})
	}
}

func TestExecute_Gen(t *testing.T) {
	res := run(t, "", "gen", "-i", "testdata/squad.json", "-p", "heroes", "-r", "Squad")
	require.Equal(t, 0, res.code, res.stderr)

	assert.True(t, strings.HasPrefix(res.stdout, generator.Header+"\npackage heroes\n"), res.stdout)
	assert.Contains(t, res.stdout, "\tMembers   []SquadMember `ido:\"members\" json:\"members\"`\n")

	file, err := goparser.ParseFile(token.NewFileSet(), "squad.go", res.stdout, goparser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "heroes", file.Name.Name)

	var names []string
	ast.Inspect(file, func(n ast.Node) bool {
		if ts, ok := n.(*ast.TypeSpec); ok {
			names = append(names, ts.Name.Name)
		}
		return true
	})
	assert.Equal(t, []string{"Squad", "SquadMember"}, names)
}

func TestExecute_GenOptions(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".ido.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`package: models
root_name: Team
formatting:
  enabled: true
types:
  mappings:
    - pattern: "^/formed$"
      type: float
      comment: Year the squad formed
`), 0o644))

	t.Run("ConfigFile", func(t *testing.T) {
		res := run(t, "", "--config", cfgPath, "gen", "-i", "testdata/squad.json")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Contains(t, res.stdout, "package models\n")
		assert.Contains(t, res.stdout, "type Team struct")
		assert.Contains(t, res.stdout, "\t// Year the squad formed\n")
		assert.Regexp(t, regexp.MustCompile(`\n\tFormed\s+float64\s+`), res.stdout)
	})

	t.Run("FlagsOverrideConfig", func(t *testing.T) {
		out := filepath.Join(dir, "team.go")
		res := run(t, "", "--config", cfgPath, "gen", "-i", "testdata/squad.json", "-p", "club", "-r", "Club", "--no-format", "-o", out)
		require.Equal(t, 0, res.code, res.stderr)
		assert.Empty(t, res.stdout)

		code := readFile(t, out)
		assert.Contains(t, code, "package club\n")
		assert.Contains(t, code, "type Club struct")
	})

	t.Run("ArrayRoot", func(t *testing.T) {
		res := run(t, "", "gen", "-i", "testdata/people.json", "-r", "People")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Contains(t, res.stdout, "type People []Person\n")
		assert.Contains(t, res.stdout, "type Person struct")
	})

	t.Run("BadPackage", func(t *testing.T) {
		res := run(t, "", "gen", "-i", "testdata/squad.json", "-p", "my-models")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "Code generation error")
	})

	t.Run("BadConfig", func(t *testing.T) {
		res := run(t, "", "--config", filepath.Join(dir, "missing.yml"), "gen", "-i", "testdata/squad.json")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "Configuration error")
	})
}

func TestExecute_Debug(t *testing.T) {
	res := run(t, "", "-d", "shape", "-i", "testdata/squad.json")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, squadShape+"\n", res.stdout)
	assert.Contains(t, res.stderr, "level=DEBUG")
	assert.Contains(t, res.stderr, "reading input")
}

func TestExecute_Usage(t *testing.T) {
	t.Run("Version", func(t *testing.T) {
		res := run(t, "", "--version")
		assert.Equal(t, 0, res.code)
		assert.Equal(t, "ido version "+Version+"\n", res.stdout)
	})

	t.Run("Help", func(t *testing.T) {
		res := run(t, "", "--help")
		assert.Equal(t, 0, res.code)
		assert.Contains(t, res.stdout, "Usage: ido")
		for _, cmd := range []string{"encode", "decode", "shape", "gen"} {
			assert.Contains(t, res.stdout, cmd)
		}
	})

	t.Run("NoCommand", func(t *testing.T) {
		res := run(t, "")
		assert.NotEqual(t, 0, res.code)
		assert.Contains(t, res.stderr, "ido: error:")
	})

	t.Run("DecodeNeedsShape", func(t *testing.T) {
		res := run(t, "", "decode")
		assert.NotEqual(t, 0, res.code)
		assert.Contains(t, res.stderr, "--shape")
	})

	t.Run("BadEnum", func(t *testing.T) {
		res := run(t, "", "decode", "-s", "testdata/people.json", "--to", "xml")
		assert.NotEqual(t, 0, res.code)
		assert.Contains(t, res.stderr, "--to")
	})
}
