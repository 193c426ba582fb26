// Package locator parses and serializes ipfs:// and template-ipfs:// locator
// URLs and substitutes {name} template variables in their paths.
package locator

import (
	"sort"
	"strconv"
	"strings"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/errs"
)

const (
	SchemeIPFS         = "ipfs"
	SchemeTemplateIPFS = "template-ipfs"

	separator = "://"
)

// URL is a parsed locator. Path is empty or starts with "/".
type URL struct {
	Scheme string
	CID    cid.CID
	Path   string
}

// Parse parses a locator URL.
func Parse(text string) (URL, error) {
	scheme, rest, ok := strings.Cut(text, separator)
	if !ok {
		return URL{}, errs.New(errs.KindInvalidURL, "RCID-URL-001", "missing \"://\" scheme separator")
	}
	if scheme != SchemeIPFS && scheme != SchemeTemplateIPFS {
		return URL{}, errs.New(errs.KindInvalidURL, "RCID-URL-002", "unsupported scheme "+strconv.Quote(scheme))
	}
	ident, residual, _ := strings.Cut(rest, "/")
	if ident == "" {
		return URL{}, errs.New(errs.KindInvalidURL, "RCID-URL-003", "missing content identifier")
	}
	id, err := cid.Parse(ident)
	if err != nil {
		return URL{}, errs.Wrap(errs.KindInvalidURL, "RCID-URL-004", "invalid content identifier", err)
	}
	u := URL{Scheme: scheme, CID: id}
	if residual != "" {
		u.Path = "/" + residual
	}
	return u, nil
}

// Encode returns the text form of u. It fails if the identifier is undefined.
func (u URL) Encode() (string, error) {
	id, err := u.CID.Encode()
	if err != nil {
		return "", err
	}
	return u.Scheme + separator + id + u.Path, nil
}

func (u URL) String() string {
	s, err := u.Encode()
	if err != nil {
		return u.Scheme + separator + "<undefined cid>" + u.Path
	}
	return s
}

// IsTemplate reports whether u uses the template-ipfs scheme.
func (u URL) IsTemplate() bool { return u.Scheme == SchemeTemplateIPFS }

// ResolveTemplate replaces every "{name}" in u.Path with vars[name].
// Variables are applied in sorted name order, so a value containing another
// variable's placeholder is expanded only if that name sorts later.
func ResolveTemplate(u URL, vars map[string]string) URL {
	if u.Path == "" || len(vars) == 0 {
		return u
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	path := u.Path
	for _, name := range names {
		path = strings.ReplaceAll(path, "{"+name+"}", vars[name])
	}
	u.Path = path
	return u
}

// ResolveAssetTemplate substitutes {id} with the decimal asset ID.
func ResolveAssetTemplate(u URL, assetID uint64) URL {
	return ResolveTemplate(u, map[string]string{"id": strconv.FormatUint(assetID, 10)})
}
