// Package lexicon loads a lexicon - a TOML document of [section] blocks,
// each a set of name = regex_source pairs - and drives each section through
// the regex parser and the automaton builder. It also resolves manifest
// files, which list other lexicon files to load and merge instead of
// holding patterns directly.
package lexicon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// MaxManifestRecursionDepth bounds how many manifests deep an inclusion
// chain may go before it is treated as malformed.
const MaxManifestRecursionDepth = 32

var (
	// ErrManifestRecursionTooDeep is returned when MaxManifestRecursionDepth
	// is reached and an additional manifest is then specified.
	ErrManifestRecursionTooDeep = errors.New("lexicon: too many manifests deep")

	// ErrManifestCircularRef is returned when a manifest's inclusion chain
	// refers back to a file already being loaded.
	ErrManifestCircularRef = errors.New("lexicon: manifest inclusion chain refers back to itself")
)

// FileInfo contains the header every lexicon-format file must carry.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// ScanFileInfo reads just the top-level table of a lexicon file - up to the
// first section header - and decodes its FileInfo. This lets Load
// distinguish a manifest from a lexicon document without decoding (and
// risking errors from) the rest of the file, whose shape depends on which
// kind it turns out to be.
func ScanFileInfo(data []byte) (FileInfo, error) {
	topLevelEnd := -1
	onNewLine := true
	for i := 0; i < len(data); i++ {
		if onNewLine && data[i] == '[' {
			topLevelEnd = i
			break
		}
		if data[i] == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(data[i])) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	_, err := toml.Decode(string(scanData), &info)
	return info, err
}

// Load reads a lexicon from path. If the file is a manifest, every file it
// lists (resolved relative to the manifest's own directory) is loaded
// recursively and their sections concatenated in listed order; circular
// inclusion and excessive nesting are both rejected.
func Load(path string) (*Lexicon, error) {
	return load(path, nil, 0)
}

func load(path string, visited []string, depth int) (*Lexicon, error) {
	if depth > MaxManifestRecursionDepth {
		return nil, ErrManifestRecursionTooDeep
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}
	for _, v := range visited {
		if v == abs {
			return nil, ErrManifestCircularRef
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}

	info, err := ScanFileInfo(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon: reading header of %s: %w", path, err)
	}

	switch strings.ToUpper(info.Type) {
	case "MANIFEST":
		var manifest struct {
			Files []string `toml:"files"`
		}
		if err := toml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("lexicon: parsing manifest %s: %w", path, err)
		}

		merged := &Lexicon{}
		dir := filepath.Dir(path)
		nextVisited := append(append([]string(nil), visited...), abs)
		for _, f := range manifest.Files {
			sub, err := load(filepath.Join(dir, f), nextVisited, depth+1)
			if err != nil {
				return nil, err
			}
			merged.Sections = append(merged.Sections, sub.Sections...)
		}
		return merged, nil

	case "LEXICON", "":
		return parseLexiconSource(data)

	default:
		return nil, fmt.Errorf("lexicon: %s: unknown file type %q", path, info.Type)
	}
}
