package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"supergithub/pkg/config"
	"supergithub/pkg/fuzzy"
	"supergithub/pkg/github"
	"supergithub/pkg/github/githubtest"
)

func TestListCommand(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		fake := newFake()
		out, err := executeCommand(t, fake, execOptions{}, "list")
		require.NoError(t, err)

		assert.Contains(t, out, "octocat/hello")
		assert.Contains(t, out, "octocat/secret")
		assert.Contains(t, out, "3 repositories")
		assert.Equal(t, []string{"list octocat"}, fake.Calls())
	})

	t.Run("details", func(t *testing.T) {
		out, err := executeCommand(t, newFake(), execOptions{}, "list", "--details")
		require.NoError(t, err)
		assert.Contains(t, out, "Topics")
	})

	t.Run("private only as yaml", func(t *testing.T) {
		out, err := executeCommand(t, newFake(), execOptions{}, "list", "--private-only", "--output", "yaml")
		require.NoError(t, err)

		var repos []map[string]interface{}
		require.NoError(t, yaml.Unmarshal([]byte(out), &repos))
		require.Len(t, repos, 1)
		assert.Equal(t, "secret", repos[0]["name"])
	})

	t.Run("archived only", func(t *testing.T) {
		out, err := executeCommand(t, newFake(), execOptions{}, "list", "--archived-only")
		require.NoError(t, err)
		assert.Contains(t, out, "octocat/old-site")
		assert.NotContains(t, out, "octocat/hello")
	})

	t.Run("other user", func(t *testing.T) {
		fake := newFake().Add(github.Repository{Owner: "hubot", Name: "chatops"})
		out, err := executeCommand(t, fake, execOptions{}, "list", "--user", "hubot")
		require.NoError(t, err)
		assert.Contains(t, out, "hubot/chatops")
		assert.Equal(t, []string{"list hubot"}, fake.Calls())
	})

	t.Run("conflicting filters", func(t *testing.T) {
		_, err := executeCommand(t, newFake(), execOptions{}, "list", "--archived-only", "--active-only")
		assert.Error(t, err)
	})

	t.Run("unknown output", func(t *testing.T) {
		_, err := executeCommand(t, newFake(), execOptions{}, "list", "--output", "json")
		assert.ErrorContains(t, err, "unsupported output format")
	})

	t.Run("remote failure", func(t *testing.T) {
		fake := newFake().Fail("list", "octocat", github.NewGitHubError(github.ErrorTypeNetwork, "connection refused", nil))
		_, err := executeCommand(t, fake, execOptions{}, "list")
		assert.ErrorContains(t, err, "failed to list repositories")
	})
}

func TestMissingToken(t *testing.T) {
	fake := newFake()
	out, err := executeCommand(t, fake, execOptions{env: map[string]string{"GH_TOKEN": ""}}, "list")

	assert.ErrorIs(t, err, config.ErrTokenMissing)
	assert.Contains(t, out, "personal access token")
	assert.Empty(t, fake.Calls())
}

func TestInfoCommand(t *testing.T) {
	out, err := executeCommand(t, newFake(), execOptions{}, "info", "octocat", "hello")
	require.NoError(t, err)

	assert.Contains(t, out, "octocat/hello")
	assert.Contains(t, out, "Language:")
	assert.Contains(t, out, "Go")

	_, err = executeCommand(t, newFake(), execOptions{}, "info", "octocat", "missing")
	assert.True(t, github.IsNotFound(err))
}

func TestArchiveCommands(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		fake := newFake()
		out, err := executeCommand(t, fake, execOptions{}, "archive", "octocat", "hello")
		require.NoError(t, err)

		assert.Contains(t, out, "Archived octocat/hello")
		repo, _ := fake.Repo("octocat/hello")
		assert.True(t, repo.Archived)
	})

	t.Run("batch with failure", func(t *testing.T) {
		fake := newFake().Fail("archive", "octocat/secret", errors.New("boom"))
		out, err := executeCommand(t, fake, execOptions{}, "archive", "octocat", "--batch", "hello,secret")

		assert.ErrorContains(t, err, "1 of 2 operations failed")
		assert.Contains(t, out, "octocat/secret: boom")
		repo, _ := fake.Repo("octocat/hello")
		assert.True(t, repo.Archived)
	})

	t.Run("batch entry with its own owner", func(t *testing.T) {
		fake := newFake().Add(github.Repository{Owner: "acme", Name: "legacy"})
		out, err := executeCommand(t, fake, execOptions{}, "archive", "octocat", "hello", "--batch", "acme/legacy")
		require.NoError(t, err)

		assert.Contains(t, out, "2 succeeded, 0 failed")
		assert.ElementsMatch(t, []string{"archive octocat/hello", "archive acme/legacy"}, fake.Calls())
	})

	t.Run("malformed batch entry", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "archive", "octocat", "--batch", "acme/")
		assert.ErrorContains(t, err, "expected owner/name")
		assert.Empty(t, fake.Calls())
	})

	t.Run("nothing to do", func(t *testing.T) {
		_, err := executeCommand(t, newFake(), execOptions{}, "archive", "octocat")
		assert.ErrorContains(t, err, "no repository given")
	})

	t.Run("unarchive", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "unarchive", "octocat", "old-site")
		require.NoError(t, err)

		repo, _ := fake.Repo("octocat/old-site")
		assert.False(t, repo.Archived)
	})
}

// stubPicker replaces the interactive picker, recording the offered names
func stubPicker(t *testing.T, pick []string, err error) *[]string {
	t.Helper()

	var offered []string
	orig := pickRepositories
	pickRepositories = func(_ *cobra.Command, _ string, repos []github.Repository) ([]string, error) {
		for _, repo := range repos {
			offered = append(offered, repo.Name)
		}
		return pick, err
	}
	t.Cleanup(func() { pickRepositories = orig })
	return &offered
}

func TestPickTargets(t *testing.T) {
	t.Run("archive offers active repositories", func(t *testing.T) {
		offered := stubPicker(t, []string{"secret"}, nil)
		fake := newFake()

		out, err := executeCommand(t, fake, execOptions{interactive: true}, "archive", "octocat", "--pick")
		require.NoError(t, err)

		assert.Equal(t, []string{"hello", "secret"}, *offered)
		assert.Contains(t, out, "Archived octocat/secret")
		assert.Equal(t, []string{"list octocat", "archive octocat/secret"}, fake.Calls())
	})

	t.Run("unarchive offers archived repositories", func(t *testing.T) {
		offered := stubPicker(t, []string{"old-site"}, nil)

		_, err := executeCommand(t, newFake(), execOptions{interactive: true}, "unarchive", "octocat", "--pick")
		require.NoError(t, err)
		assert.Equal(t, []string{"old-site"}, *offered)
	})

	t.Run("picked repositories join the batch", func(t *testing.T) {
		stubPicker(t, []string{"secret", "old-site"}, nil)
		fake := newFake()

		_, err := executeCommand(t, fake, execOptions{interactive: true}, "delete", "octocat", "hello", "--pick", "--yes")
		require.NoError(t, err)
		assert.Len(t, fake.CallsWithPrefix("delete"), 3)
	})

	t.Run("requires a terminal", func(t *testing.T) {
		stubPicker(t, []string{"secret"}, nil)
		fake := newFake()

		_, err := executeCommand(t, fake, execOptions{}, "archive", "octocat", "--pick")
		assert.ErrorIs(t, err, errNotInteractive)
		assert.Empty(t, fake.Calls())
	})

	t.Run("nothing picked", func(t *testing.T) {
		stubPicker(t, nil, fuzzy.ErrNoSelection)
		fake := newFake()

		_, err := executeCommand(t, fake, execOptions{interactive: true}, "archive", "octocat", "--pick")
		assert.ErrorIs(t, err, fuzzy.ErrNoSelection)
		assert.Empty(t, fake.CallsWithPrefix("archive"))
	})
}

func TestDeleteCommand(t *testing.T) {
	t.Run("yes flag", func(t *testing.T) {
		fake := newFake()
		out, err := executeCommand(t, fake, execOptions{}, "delete", "octocat", "secret", "--yes")
		require.NoError(t, err)

		assert.Contains(t, out, "Deleted octocat/secret")
		_, exists := fake.Repo("octocat/secret")
		assert.False(t, exists)
	})

	t.Run("non-interactive without confirmation", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "delete", "octocat", "secret")

		assert.ErrorIs(t, err, errNotInteractive)
		assert.Empty(t, fake.CallsWithPrefix("delete"))
	})

	t.Run("typed confirmation", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{interactive: true, stdin: "DELETE\n"}, "delete", "octocat", "secret")
		require.NoError(t, err)

		_, exists := fake.Repo("octocat/secret")
		assert.False(t, exists)
	})

	t.Run("wrong phrase cancels", func(t *testing.T) {
		fake := newFake()
		out, err := executeCommand(t, fake, execOptions{interactive: true, stdin: "delete\n"}, "delete", "octocat", "secret")
		require.NoError(t, err)

		assert.Contains(t, out, "Deletion cancelled.")
		assert.Empty(t, fake.CallsWithPrefix("delete"))
	})

	t.Run("batch", func(t *testing.T) {
		fake := newFake()
		out, err := executeCommand(t, fake, execOptions{}, "delete", "octocat", "--batch", "hello,secret", "--force")
		require.NoError(t, err)

		assert.Contains(t, out, "2 succeeded, 0 failed")
		assert.Len(t, fake.CallsWithPrefix("delete"), 2)
	})
}

func TestUpdateCommand(t *testing.T) {
	t.Run("sparse update", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "update", "octocat", "hello",
			"--description", "Greeting service", "--private", "sim")
		require.NoError(t, err)

		repo, _ := fake.Repo("octocat/hello")
		assert.Equal(t, "Greeting service", repo.Description)
		assert.True(t, repo.Private)
		assert.Equal(t, "Go", repo.Language)
	})

	t.Run("empty string is still sent", func(t *testing.T) {
		fake := githubtest.New("octocat").Add(github.Repository{Name: "hello", Description: "old"})
		_, err := executeCommand(t, fake, execOptions{}, "update", "octocat", "hello", "--description", "")
		require.NoError(t, err)

		repo, _ := fake.Repo("octocat/hello")
		assert.Empty(t, repo.Description)
	})

	t.Run("no flags", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "update", "octocat", "hello")

		assert.ErrorContains(t, err, "nothing to update")
		assert.Empty(t, fake.Calls())
	})

	t.Run("invalid name is rejected locally", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "update", "octocat", "hello", "--name", "bad name")

		assert.ErrorContains(t, err, "repository name can only contain")
		assert.Empty(t, fake.Calls())
	})

	t.Run("invalid boolean", func(t *testing.T) {
		_, err := executeCommand(t, newFake(), execOptions{}, "update", "octocat", "hello", "--has-wiki", "maybe")
		assert.ErrorContains(t, err, "--has-wiki")
	})
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"YES", true, false},
		{"sim", true, false},
		{"1", true, false},
		{"false", false, false},
		{"não", false, false},
		{"nao", false, false},
		{"off", false, false},
		{"talvez", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseBool(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopicsCommands(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, err := executeCommand(t, newFake(), execOptions{}, "topics", "list", "octocat", "hello")
		require.NoError(t, err)
		assert.Contains(t, out, "octocat/hello: go")
	})

	t.Run("set", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "topics", "set", "octocat", "hello", "--topics", "CLI,Tools")
		require.NoError(t, err)

		repo, _ := fake.Repo("octocat/hello")
		assert.Equal(t, []string{"cli", "tools"}, repo.Topics)
	})

	t.Run("add", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "topics", "add", "octocat", "hello", "--topics", "Go,testing")
		require.NoError(t, err)

		repo, _ := fake.Repo("octocat/hello")
		assert.Equal(t, []string{"go", "testing"}, repo.Topics)
	})

	t.Run("invalid topic", func(t *testing.T) {
		fake := newFake()
		_, err := executeCommand(t, fake, execOptions{}, "topics", "set", "octocat", "hello", "--topics", "go,c++")

		assert.ErrorContains(t, err, "topic 2 can only contain")
		assert.Empty(t, fake.CallsWithPrefix("set_topics"))
	})

	t.Run("topics flag is required", func(t *testing.T) {
		_, err := executeCommand(t, newFake(), execOptions{}, "topics", "set", "octocat", "hello")
		assert.Error(t, err)
	})
}

func TestCreateCommand(t *testing.T) {
	fake := newFake()
	out, err := executeCommand(t, fake, execOptions{}, "create", "new-tool",
		"--description", "Small tool", "--private", "--no-wiki", "--topics", "go,cli")
	require.NoError(t, err)

	assert.Contains(t, out, "Created octocat/new-tool (private)")

	repo, ok := fake.Repo("octocat/new-tool")
	require.True(t, ok)
	assert.Equal(t, "Small tool", repo.Description)
	assert.True(t, repo.Private)
	assert.False(t, repo.Features.Wiki)
	assert.True(t, repo.Features.Issues)
	assert.Equal(t, "main", repo.DefaultBranch)
	assert.Equal(t, []string{"go", "cli"}, repo.Topics)

	_, err = executeCommand(t, fake, execOptions{}, "create", "new-tool")
	assert.ErrorContains(t, err, "already exists")
}

func organizeFake() *githubtest.Client {
	return githubtest.New("octocat").Add(
		github.Repository{Name: "temp-spike", Description: "spike", UpdatedAt: daysAgo(120)},
		github.Repository{Name: "stale-lib", Description: "lib", UpdatedAt: daysAgo(400)},
		github.Repository{Name: "my-tool", Language: "Go", UpdatedAt: daysAgo(5)},
	)
}

func TestOrganizeCommand(t *testing.T) {
	t.Run("dry run by default", func(t *testing.T) {
		fake := organizeFake()
		out, err := executeCommand(t, fake, execOptions{}, "organize", "--delete")
		require.NoError(t, err)

		assert.Contains(t, out, "Dry run")
		assert.Contains(t, out, "octocat/stale-lib")
		assert.Contains(t, out, "Projeto: My Tool")
		assert.Contains(t, out, "changes planned")
		assert.Equal(t, []string{"list octocat"}, fake.Calls())
	})

	t.Run("execute with typed confirmation", func(t *testing.T) {
		fake := organizeFake()
		out, err := executeCommand(t, fake, execOptions{interactive: true, stdin: "DELETE ALL\n"},
			"organize", "--execute", "--delete", "--no-topics")
		require.NoError(t, err)

		_, exists := fake.Repo("octocat/temp-spike")
		assert.False(t, exists)

		stale, _ := fake.Repo("octocat/stale-lib")
		assert.True(t, stale.Archived)

		tool, _ := fake.Repo("octocat/my-tool")
		assert.Equal(t, "Projeto: My Tool", tool.Description)

		assert.Contains(t, out, "Archived 1, deleted 1, updated 1, tagged 0")
	})

	t.Run("delete pass declined", func(t *testing.T) {
		fake := organizeFake()
		out, err := executeCommand(t, fake, execOptions{},
			"organize", "--execute", "--delete", "--no-archive", "--no-update", "--no-topics")
		require.NoError(t, err)

		assert.Contains(t, out, "Delete pass cancelled")
		assert.Contains(t, out, "⚠ delete   octocat/temp-spike")
		assert.Contains(t, out, "skipped")
		assert.NotContains(t, out, "✗")
		assert.Empty(t, fake.CallsWithPrefix("delete"))
	})

	t.Run("configured zero age thresholds", func(t *testing.T) {
		fake := organizeFake()
		out, err := executeCommand(t, fake, execOptions{env: map[string]string{
			"SUPERGITHUB_ARCHIVE_AFTER_DAYS": "0",
		}}, "organize", "--no-update", "--no-topics")
		require.NoError(t, err)

		assert.Contains(t, out, "Archiving after 0 idle days")
		assert.Contains(t, out, "archive  octocat/my-tool")
	})

	t.Run("configured description prefix", func(t *testing.T) {
		fake := organizeFake()
		out, err := executeCommand(t, fake, execOptions{env: map[string]string{
			"SUPERGITHUB_DESCRIPTION_PREFIX": "Project: ",
		}}, "organize", "--no-archive", "--no-topics")
		require.NoError(t, err)

		assert.Contains(t, out, "Project: My Tool")
	})
}

const validMemo = `Memorando nº 45/2025-DG

Em 13 de janeiro de 2025.

Solicita-se a revisão da escala de férias.

Atenciosamente,
`

func TestDocValidateCommand(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte(validMemo), 0644))

	out, err := executeCommand(t, nil, execOptions{}, "doc", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "0 warning(s)")

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte(strings.Replace(validMemo, "13 de janeiro de 2025", "13-01-2025", 1)), 0644))

	out, err = executeCommand(t, nil, execOptions{}, "doc", "validate", bad)
	assert.ErrorContains(t, err, "1 error(s)")
	assert.Contains(t, out, "[DATE]")

	_, err = executeCommand(t, nil, execOptions{}, "doc", "validate", filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "failed to read document")
}

func TestDocGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "oficio.yaml")
	require.NoError(t, os.WriteFile(data, []byte(`
numero: "7"
assunto: Pedido de 50% do orçamento
corpo: Texto do ofício.
destinatario: {nome: João da Silva, cargo: Diretor}
signatario: {nome: Maria Oliveira, cargo: Coordenadora}
orgao: {nome: MINISTÉRIO DA ADMINISTRAÇÃO, sigla: MA, cidade: Brasília}
`), 0644))

	t.Run("tex output", func(t *testing.T) {
		output := filepath.Join(dir, "out", "oficio.tex")
		out, err := executeCommand(t, nil, execOptions{}, "doc", "generate", "oficio", "--data", data, "--tex", "--output", output)
		require.NoError(t, err)
		assert.Contains(t, out, output)

		tex, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(tex), `Pedido de 50\% do orçamento`)
		assert.Contains(t, string(tex), "João da Silva")
		assert.NotContains(t, string(tex), "{{")
	})

	t.Run("template directory from environment", func(t *testing.T) {
		templates := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(templates, "template_oficio.tex"), []byte("custom {{NUMERO}}"), 0644))

		output := filepath.Join(dir, "custom.tex")
		_, err := executeCommand(t, nil, execOptions{env: map[string]string{"SUPERGITHUB_TEMPLATE_DIR": templates}},
			"doc", "generate", "oficio", "--data", data, "--tex", "--output", output)
		require.NoError(t, err)

		tex, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, "custom 7", string(tex))
	})

	t.Run("missing required field", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(broken, []byte("numero: \"1\"\n"), 0644))

		_, err := executeCommand(t, nil, execOptions{}, "doc", "generate", "oficio", "--data", broken, "--tex")
		assert.ErrorContains(t, err, "required field")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := executeCommand(t, nil, execOptions{}, "doc", "generate", "parecer", "--data", data, "--tex")
		assert.ErrorContains(t, err, "unknown document kind")
	})

	t.Run("data flag is required", func(t *testing.T) {
		_, err := executeCommand(t, nil, execOptions{}, "doc", "generate", "oficio")
		assert.Error(t, err)
	})
}

func TestInitCommand(t *testing.T) {
	home := t.TempDir()
	env := map[string]string{"HOME": home}

	out, err := executeCommand(t, nil, execOptions{env: env}, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")

	path := filepath.Join(home, ".supergithub", "config.yaml")
	loaded, err := config.LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)

	out, err = executeCommand(t, nil, execOptions{env: env, stdin: "n\n"}, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")
}
