package format

import (
	"testing"

	"gotest.tools/assert"
)

func TestBuildLog(t *testing.T) {
	t.Run("ansi escapes are stripped", func(t *testing.T) {
		raw := "\x1b[32mStep 1/2\x1b[0m : FROM alpine\n\x1b[2K\rdone"
		assert.Equal(t, BuildLog(raw), "Step 1/2 : FROM alpine\ndone")
	})

	t.Run("newline runs collapse", func(t *testing.T) {
		raw := "a\n\n\nb\n\nc\n"
		assert.Equal(t, BuildLog(raw), "a\nb\nc")
	})

	t.Run("already clean text is untouched", func(t *testing.T) {
		assert.Equal(t, BuildLog("one\ntwo"), "one\ntwo")
	})
}

func TestRepoName(t *testing.T) {
	cases := map[string]string{
		"https://github.com/vano2903/testing.git": "testing",
		"https://github.com/vano2903/testing":     "testing",
		"https://github.com/vano2903/testing/":    "testing",
		"git@github.com:vano2903/testing.git":     "testing",
		"testing":                                 "testing",
	}
	for url, want := range cases {
		assert.Equal(t, RepoName(url), want)
	}
}

func TestRegistryHost(t *testing.T) {
	cases := map[string]string{
		"http://localhost:5000":   "localhost:5000",
		"https://localhost:5000/": "localhost:5000",
		"localhost:5000":          "localhost:5000",
		"registry:5000///":        "registry:5000",
	}
	for in, want := range cases {
		assert.Equal(t, RegistryHost(in), want)
	}

	t.Run("normalization is idempotent", func(t *testing.T) {
		once := RegistryHost("https://registry.example.com:5000/")
		assert.Equal(t, RegistryHost(once), once)
	})
}

func TestRegistryRef(t *testing.T) {
	ref := RegistryRef("http://registry:5000/", "myrepo", "1.0")
	assert.Equal(t, ref, "registry:5000/myrepo:1.0")

	again := RegistryRef(RegistryHost("http://registry:5000/"), "myrepo", "1.0")
	assert.Equal(t, again, ref)
}
