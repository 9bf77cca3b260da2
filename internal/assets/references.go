package assets

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"github.com/spf13/afero"
)

// CacheBust selects the token appended to asset URLs.
type CacheBust string

const (
	CacheBustNone        CacheBust = "none"
	CacheBustTime        CacheBust = "time"
	CacheBustFingerprint CacheBust = "fingerprint"
	CacheBustGit         CacheBust = "git"
)

// ParseCacheBust validates a cache-bust mode name. "" selects none.
func ParseCacheBust(s string) (CacheBust, error) {
	switch CacheBust(strings.ToLower(strings.TrimSpace(s))) {
	case "", CacheBustNone:
		return CacheBustNone, nil
	case CacheBustTime:
		return CacheBustTime, nil
	case CacheBustFingerprint:
		return CacheBustFingerprint, nil
	case CacheBustGit:
		return CacheBustGit, nil
	}
	return "", fmt.Errorf("unknown cache-bust mode %q", s)
}

const fingerprintLength = 12

// References are the per-build asset URLs, site-relative and already carrying
// their cache-bust query when one applies.
type References struct {
	HeadStyles  []string
	HeadScripts []string
	BodyScripts []string
}

// TokenSource supplies the inputs of the non-content cache-bust modes.
type TokenSource struct {
	Now      time.Time
	Revision string
}

// Resolve computes the asset references of one build. Fingerprints are taken
// from the files already installed under outputDir; missing files get no token.
func Resolve(fsys afero.Fs, outputDir string, mode CacheBust, src TokenSource) (References, error) {
	token := func(rel string) (string, error) {
		switch mode {
		case CacheBustTime:
			return strconv.FormatInt(src.Now.UnixMilli(), 10), nil
		case CacheBustGit:
			return src.Revision, nil
		case CacheBustFingerprint:
			data, err := afero.ReadFile(fsys, filepath.Join(outputDir, filepath.FromSlash(rel)))
			if err != nil {
				exists, statErr := afero.Exists(fsys, filepath.Join(outputDir, filepath.FromSlash(rel)))
				if statErr == nil && !exists {
					return "", nil
				}
				return "", err
			}
			fp := mdfp.CalculateFingerprintFromParts("", string(data))
			if len(fp) > fingerprintLength {
				fp = fp[:fingerprintLength]
			}
			return fp, nil
		}
		return "", nil
	}

	resolve := func(list []string) ([]string, error) {
		out := make([]string, 0, len(list))
		for _, rel := range list {
			tok, err := token(rel)
			if err != nil {
				return nil, fmt.Errorf("cache-bust token for %s: %w", rel, err)
			}
			if tok != "" {
				rel += "?" + tok
			}
			out = append(out, rel)
		}
		return out, nil
	}

	var refs References
	var err error
	if refs.HeadStyles, err = resolve(HeadStyles); err != nil {
		return References{}, err
	}
	if refs.HeadScripts, err = resolve(HeadScripts); err != nil {
		return References{}, err
	}
	if refs.BodyScripts, err = resolve(BodyScripts); err != nil {
		return References{}, err
	}
	return refs, nil
}

// Head renders the stylesheet links followed by the head scripts for a page with the given prefix.
func (r References) Head(prefix string) string {
	lines := make([]string, 0, len(r.HeadStyles)+len(r.HeadScripts))
	for _, s := range r.HeadStyles {
		lines = append(lines, `<link rel="stylesheet" href="`+prefix+s+`">`)
	}
	for _, s := range r.HeadScripts {
		lines = append(lines, `<script src="`+prefix+s+`"></script>`)
	}
	return strings.Join(lines, "\n")
}

// Body renders the body scripts for a page with the given prefix.
func (r References) Body(prefix string) string {
	lines := make([]string, 0, len(r.BodyScripts))
	for _, s := range r.BodyScripts {
		lines = append(lines, `<script src="`+prefix+s+`"></script>`)
	}
	return strings.Join(lines, "\n")
}
