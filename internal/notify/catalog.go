package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	keyTitle = "locationNotificationTitle"
	keyBody  = "locationNotificationBody"
)

var (
	supported = []language.Tag{language.English, language.Turkish}
	matcher   = language.NewMatcher(supported)
	messages  = newCatalog()
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	must(b.SetString(language.English, keyTitle, "Nearby place"))
	must(b.SetString(language.English, keyBody, "You are near %s"))
	must(b.SetString(language.Turkish, keyTitle, "Yakındaki yer"))
	must(b.SetString(language.Turkish, keyBody, "%s yakınındasınız"))
	return b
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Resolve maps a language code to the closest supported one ("en" or "tr").
func Resolve(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English.String()
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx].String()
}

// Text returns the localized title and body for a place.
func Text(lang, place string) (title, body string) {
	p := message.NewPrinter(language.Make(Resolve(lang)), message.Catalog(messages))
	return p.Sprintf(keyTitle), p.Sprintf(keyBody, place)
}
