package wishlist

import "regexp"

// asinRegex matches the product id inside the usual Amazon URL shapes
// (/dp/<asin>, /gp/product/<asin>, /ASIN/<asin>).
var asinRegex = regexp.MustCompile(`(?i)(?:dp|gp/product|ASIN)/(\w{10})`)

// deriveImageURL builds a product image URL for Amazon links. Non-Amazon
// URLs (or Amazon URLs without a recognizable product id) derive nothing.
func deriveImageURL(productURL string) string {
	match := asinRegex.FindStringSubmatch(productURL)
	if match == nil {
		return ""
	}
	return "https://ws-na.amazon-adsystem.com/widgets/q?_encoding=UTF8&ASIN=" + match[1] +
		"&Format=_SL160_&ID=AsinImage&MarketPlace=US&ServiceVersion=20070822&WS=1&tag="
}
