package prefabs

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed scenes/*.tengo
var ScenesFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

// Source resolves prefab files. A file present under Dir wins over the
// embedded copy; an empty Dir uses the embedded files only.
type Source struct {
	Dir string
}

// Load returns the prefab called name.
func (s Source) Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if s.Dir != "" {
		if data, err := os.ReadFile(s.diskPath(clean)); err == nil {
			return data, nil
		}
	}
	return PrefabsFS.ReadFile(clean)
}

// LoadScene returns the scene script called name.
func (s Source) LoadScene(name string) ([]byte, error) {
	clean := cleanScenePath(name)
	if s.Dir != "" {
		if data, err := os.ReadFile(s.diskPath(clean)); err == nil {
			return data, nil
		}
	}
	return ScenesFS.ReadFile(clean)
}

// Scenes lists the embedded scene names.
func Scenes() []string {
	entries, err := ScenesFS.ReadDir("scenes")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".tengo"))
	}
	return out
}

func (s Source) ModTime(name string) (time.Time, bool) {
	if s.Dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(s.diskPath(cleanPrefabPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func cleanScenePath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scenes/"); ok {
		s = after
	}

	if !strings.HasSuffix(s, ".tengo") {
		s += ".tengo"
	}

	return "scenes/" + s
}

func (s Source) diskPath(clean string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(clean))
}
