package sources

import (
	"encoding/json"
	"regexp"

	"github.com/berge472/izzymart/core/utils"

	"github.com/PuerkitoBio/goquery"
)

var priceRe = regexp.MustCompile(`\$?\s*([\d,]+\.?\d*)`)

// parsePrice pulls the first dollar amount out of rendered text. Returns nil
// when the text holds no usable number.
func parsePrice(text string) *float64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := utils.ToFloat(m[1])
	if v <= 0 {
		return nil
	}
	return &v
}

// productFromJSONLD scans the document's ld+json scripts for a Product node
// and extracts the structured fields. Retailers embed these for SEO, and they
// are far more stable than the rendered markup.
func productFromJSONLD(doc *goquery.Document, store, base string) *Result {
	var found *Result

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var node any
		if err := json.Unmarshal([]byte(s.Text()), &node); err != nil {
			return true
		}

		// Payload may be a single node or an array of nodes.
		candidates := []any{node}
		if list, ok := node.([]any); ok {
			candidates = list
		}

		for _, c := range candidates {
			obj, ok := c.(map[string]any)
			if !ok || utils.ToString(obj["@type"]) != "Product" {
				continue
			}
			if r := resultFromProductNode(obj, store, base); r != nil {
				found = r
				return false
			}
		}
		return true
	})

	return found
}

func resultFromProductNode(obj map[string]any, store, base string) *Result {
	r := &Result{
		Name:       utils.ToString(obj["name"]),
		Store:      store,
		ProductURL: absolutize(base, utils.ToString(obj["url"])),
	}

	switch offers := obj["offers"].(type) {
	case map[string]any:
		if p := utils.ToFloat(offers["price"]); p > 0 {
			r.Price = &p
		}
	case []any:
		if len(offers) > 0 {
			if first, ok := offers[0].(map[string]any); ok {
				if p := utils.ToFloat(first["price"]); p > 0 {
					r.Price = &p
				}
			}
		}
	}

	switch img := obj["image"].(type) {
	case string:
		r.ImageURL = absolutize(base, img)
	case []any:
		if len(img) > 0 {
			r.ImageURL = absolutize(base, utils.ToString(img[0]))
		}
	}

	if r.Name == "" {
		return nil
	}
	return r
}

// firstImage returns the first usable image src inside the selection.
func firstImage(sel *goquery.Selection, base string) string {
	var out string
	sel.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if src == "" {
			src, _ = img.Attr("data-src")
		}
		src = absolutize(base, src)
		if usableImageURL(src) {
			out = src
			return false
		}
		return true
	})
	return out
}
