package wishlist

import "testing"

func TestDeriveImageURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"dp link",
			"https://www.amazon.com/dp/B09HK4XVWT",
			"https://ws-na.amazon-adsystem.com/widgets/q?_encoding=UTF8&ASIN=B09HK4XVWT&Format=_SL160_&ID=AsinImage&MarketPlace=US&ServiceVersion=20070822&WS=1&tag=",
		},
		{
			"dp link with slug and query",
			"https://www.amazon.de/Some-Product-Name/dp/B01N5IB20Q?ref=sr_1_3",
			"https://ws-na.amazon-adsystem.com/widgets/q?_encoding=UTF8&ASIN=B01N5IB20Q&Format=_SL160_&ID=AsinImage&MarketPlace=US&ServiceVersion=20070822&WS=1&tag=",
		},
		{
			"gp/product link",
			"https://www.amazon.com/gp/product/B07PXGQC1Q",
			"https://ws-na.amazon-adsystem.com/widgets/q?_encoding=UTF8&ASIN=B07PXGQC1Q&Format=_SL160_&ID=AsinImage&MarketPlace=US&ServiceVersion=20070822&WS=1&tag=",
		},
		{
			"lowercase dp",
			"https://amazon.co.uk/product-name/DP/B000000000",
			"https://ws-na.amazon-adsystem.com/widgets/q?_encoding=UTF8&ASIN=B000000000&Format=_SL160_&ID=AsinImage&MarketPlace=US&ServiceVersion=20070822&WS=1&tag=",
		},
		{"non-amazon shop", "https://example.com/dp-shop/item/42", ""},
		{"plain url", "https://example.com/book", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		if got := deriveImageURL(tt.url); got != tt.want {
			t.Errorf("%s: deriveImageURL(%q) = %q, want %q", tt.name, tt.url, got, tt.want)
		}
	}
}
