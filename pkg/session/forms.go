package session

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// formValues collects what a browser would send for form before any edits.
func formValues(form *goquery.Selection) url.Values {
	values := url.Values{}

	form.Find("input[name]").Each(func(_ int, in *goquery.Selection) {
		if _, disabled := in.Attr("disabled"); disabled {
			return
		}
		name := in.AttrOr("name", "")
		switch strings.ToLower(in.AttrOr("type", "text")) {
		case "submit", "button", "image", "reset", "file":
			return
		case "checkbox", "radio":
			if _, checked := in.Attr("checked"); !checked {
				return
			}
			values.Add(name, in.AttrOr("value", "on"))
		default:
			values.Add(name, in.AttrOr("value", ""))
		}
	})

	form.Find("select[name]").Each(func(_ int, sel *goquery.Selection) {
		opt := sel.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = sel.Find("option").First()
		}
		if opt.Length() == 0 {
			return
		}
		values.Add(sel.AttrOr("name", ""), optionValue(opt))
	})

	form.Find("textarea[name]").Each(func(_ int, ta *goquery.Selection) {
		values.Add(ta.AttrOr("name", ""), ta.Text())
	})

	return values
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}
