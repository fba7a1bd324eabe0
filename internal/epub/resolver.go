package epub

import (
	"encoding/xml"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/epubread/epubread/internal/archive"
)

const containerPath = "META-INF/container.xml"

// container mirrors the META-INF/container.xml structure.
type container struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// packageDoc mirrors the OPF package document. Spine is decoded as a
// slice so that a document with more than one spine block keeps
// first-block-wins behavior.
type packageDoc struct {
	XMLName  xml.Name `xml:"package"`
	Manifest struct {
		Items []manifestItem `xml:"item"`
	} `xml:"manifest"`
	Spines []spine `xml:"spine"`
}

type manifestItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type spine struct {
	Items []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"itemref"`
}

var (
	imgSrcRe    = regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*(?:"([^"]+)"|'([^']+)')`)
	imageHrefRe = regexp.MustCompile(`(?i)<image[^>]+(?:xlink:)?href\s*=\s*(?:"([^"]+)"|'([^']+)')`)
)

// resolvePageOrder recovers the declared reading order of page images:
// container -> package document -> manifest -> spine. The result is a
// deduplicated list of archive entry paths in spine order. ok is false
// when any structural step fails or the spine yields no usable image,
// in which case the caller falls back to a filename scan. Parsing
// trouble is absorbed here and never surfaced as an error.
func resolvePageOrder(r archive.Reader) (order []string, ok bool) {
	containerXML, found := archive.ReadOK(r, containerPath)
	if !found {
		// Some producers lowercase the well-known path outright.
		containerXML, found = archive.ReadOK(r, strings.ToLower(containerPath))
	}
	if !found {
		return nil, false
	}

	var c container
	if err := xml.Unmarshal(containerXML, &c); err != nil || len(c.RootFiles) == 0 {
		return nil, false
	}

	// First root-file declaration wins; multiple rootfiles are a known
	// limitation and the rest are ignored.
	opfPath := path.Clean(strings.TrimSpace(c.RootFiles[0].FullPath))
	if opfPath == "" || opfPath == "." {
		return nil, false
	}

	opfXML, found := archive.ReadOK(r, opfPath)
	if !found {
		return nil, false
	}

	var pkg packageDoc
	if err := xml.Unmarshal(opfXML, &pkg); err != nil || len(pkg.Spines) == 0 {
		return nil, false
	}

	// Manifest ids must be unique; last-seen wins if a producer repeats one.
	manifest := make(map[string]manifestItem, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		if item.ID != "" && item.Href != "" {
			manifest[item.ID] = item
		}
	}

	exists := entryNameSet(r)
	seen := make(map[string]bool)

	for _, ref := range pkg.Spines[0].Items {
		item, found := manifest[strings.TrimSpace(ref.IDRef)]
		if !found {
			continue
		}

		resolved := resolveHref(opfPath, item.Href)
		if resolved == "" {
			continue
		}

		mediaType := strings.ToLower(item.MediaType)
		switch {
		case strings.HasPrefix(mediaType, "image/"):
			if !seen[resolved] && exists[strings.ToLower(resolved)] {
				seen[resolved] = true
				order = append(order, resolved)
			}

		case strings.Contains(mediaType, "xhtml") || strings.Contains(mediaType, "html"):
			doc, found := archive.ReadOK(r, resolved)
			if !found {
				continue
			}
			// Hrefs inside the markup are relative to the markup item's
			// own path, one level deeper than the package document's.
			img := resolveHref(resolved, firstImageRef(doc))
			if img != "" && !seen[img] && exists[strings.ToLower(img)] {
				seen[img] = true
				order = append(order, img)
			}
		}
	}

	return order, len(order) > 0
}

// firstImageRef extracts the first image reference from an HTML/XHTML
// content document: an <img src> value, or failing that an SVG
// <image href>/<image xlink:href> value.
func firstImageRef(doc []byte) string {
	if m := imgSrcRe.FindSubmatch(doc); m != nil {
		if len(m[1]) > 0 {
			return string(m[1])
		}
		return string(m[2])
	}
	if m := imageHrefRe.FindSubmatch(doc); m != nil {
		if len(m[1]) > 0 {
			return string(m[1])
		}
		return string(m[2])
	}
	return ""
}

// resolveHref resolves href against the directory of basePath. Fragment
// and query suffixes are stripped, dot segments normalized. Absolute
// hrefs and paths escaping the archive root resolve to "".
func resolveHref(basePath, href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if href == "" || strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}

	resolved := path.Clean(path.Join(path.Dir(basePath), href))
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return ""
	}
	return resolved
}

func entryNameSet(r archive.Reader) map[string]bool {
	set := make(map[string]bool)
	for _, e := range r.Entries() {
		set[strings.ToLower(e.Name)] = true
	}
	return set
}
