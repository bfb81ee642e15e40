package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testUA = "izzymart-test"

func TestParsePrice(t *testing.T) {
	cases := map[string]*float64{
		"$12.99":         floatPtr(12.99),
		"$1,299.00 each": floatPtr(1299.00),
		"from $4":        floatPtr(4),
		"sold out":       nil,
		"":               nil,
	}
	for text, want := range cases {
		got := parsePrice(text)
		if want == nil {
			assert.Nil(t, got, text)
		} else {
			assert.NotNil(t, got, text)
			assert.InDelta(t, *want, *got, 0.001, text)
		}
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestOpenFoodFacts_LookupUPC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/product/041303001776.json":
			w.Write([]byte(`{
				"status": 1,
				"product": {
					"_id": "041303001776",
					"product_name": "Strawberry Preserves",
					"brands": "Essential Everyday",
					"generic_name": "Fruit preserves",
					"categories_tags": ["en:spreads", "en:fruit-preserves"],
					"allergens_tags": ["en:none"],
					"nutriments": {"energy_100g": 1046.0, "sugars_100g": 60.0, "proteins_100g": 0.5},
					"serving_size": "20 g",
					"nutriscore_grade": "d",
					"image_front_url": "https://images.example/strawberry.jpg",
					"ecoscore_grade": "b",
					"stores": "Publix,Target"
				}
			}`))
		default:
			w.Write([]byte(`{"status": 0}`))
		}
	}))
	defer srv.Close()

	off := NewOpenFoodFacts(5*time.Second, testUA)
	off.baseURL = srv.URL

	r, err := off.LookupUPC(context.Background(), "041303001776")
	assert.NoError(t, err)
	assert.Equal(t, "Strawberry Preserves", r.Name)
	assert.Equal(t, "Essential Everyday", r.Brand)
	assert.Equal(t, []string{"spreads", "fruit-preserves"}, r.Tags)
	assert.Equal(t, "https://images.example/strawberry.jpg", r.ImageURL)
	assert.Equal(t, "Publix,Target", r.Metadata["stores_mentioned"])
	assert.Nil(t, r.Price)

	// kJ figure converted to kcal when no kcal value is reported.
	assert.NotNil(t, r.Nutrition)
	assert.InDelta(t, 250.0, *r.Nutrition.Calories, 0.1)
	assert.Equal(t, "d", r.Nutrition.NutritionGrade)
	assert.Equal(t, "20 g", r.Nutrition.ServingSize)

	_, err = off.LookupUPC(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBooks_OpenLibraryHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		w.Write([]byte(`{
			"ISBN:9780134685991": {
				"title": "Effective Java",
				"publishers": [{"name": "Addison-Wesley"}],
				"publish_date": "2018",
				"number_of_pages": 412,
				"authors": [{"name": "Joshua Bloch"}],
				"subjects": [{"name": "Java (Computer program language)"}],
				"cover": {"large": "https://covers.example/l.jpg", "small": "https://covers.example/s.jpg"}
			}
		}`))
	}))
	defer srv.Close()

	b := NewBooks(5*time.Second, testUA)
	b.openLibraryURL = srv.URL

	r, err := b.LookupISBN(context.Background(), "9780134685991")
	assert.NoError(t, err)
	assert.Equal(t, "Effective Java", r.Name)
	assert.Equal(t, "Joshua Bloch", r.Book.Author)
	assert.Equal(t, "Addison-Wesley", r.Book.Publisher)
	assert.Equal(t, 412, r.Book.PageCount)
	assert.Equal(t, "https://covers.example/l.jpg", r.ImageURL)
	assert.Equal(t, "Open Library", r.Metadata["source"])
}

func TestBooks_GoogleBooksFallback(t *testing.T) {
	ol := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ol.Close()

	gb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9781491941959", r.URL.Query().Get("q"))
		w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"selfLink": "https://books.example/v/abc",
				"volumeInfo": {
					"title": "The Go Programming Language",
					"authors": ["Alan Donovan", "Brian Kernighan"],
					"publisher": "Addison-Wesley",
					"publishedDate": "2015-10-26",
					"pageCount": 380,
					"language": "en",
					"categories": ["Computers"],
					"imageLinks": {"thumbnail": "https://books.example/t.jpg"}
				}
			}]
		}`))
	}))
	defer gb.Close()

	b := NewBooks(5*time.Second, testUA)
	b.openLibraryURL = ol.URL
	b.googleBooksURL = gb.URL

	r, err := b.LookupISBN(context.Background(), "9781491941959")
	assert.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", r.Name)
	assert.Equal(t, "Alan Donovan, Brian Kernighan", r.Book.Author)
	assert.Equal(t, "en", r.Book.Language)
	assert.Equal(t, "https://books.example/t.jpg", r.ImageURL)
	assert.Equal(t, "Google Books", r.Metadata["source"])
}

func TestBooks_BothSourcesMiss(t *testing.T) {
	miss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer miss.Close()

	b := NewBooks(5*time.Second, testUA)
	b.openLibraryURL = miss.URL
	b.googleBooksURL = miss.URL

	_, err := b.LookupISBN(context.Background(), "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRetailer_JSONLDPreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<script type="application/ld+json">
			{"@type": "Product", "name": "Goldfish Crackers",
			 "offers": {"price": "2.79"},
			 "image": ["/images/goldfish.jpg"],
			 "url": "/p/goldfish"}
			</script>
			</head><body>
			<div data-test="product-grid"><div>
				<a data-test="product-title" href="/other">Wrong Product</a>
				<span data-test="current-price">$99.99</span>
			</div></div>
			</body></html>`))
	}))
	defer srv.Close()

	target := NewTarget(5*time.Second, testUA)
	target.baseURL = srv.URL

	r, err := target.Search(context.Background(), "goldfish crackers")
	assert.NoError(t, err)
	assert.Equal(t, "Goldfish Crackers", r.Name)
	assert.Equal(t, "Target", r.Store)
	assert.NotNil(t, r.Price)
	assert.InDelta(t, 2.79, *r.Price, 0.001)
	assert.Equal(t, srv.URL+"/images/goldfish.jpg", r.ImageURL)
	assert.Equal(t, srv.URL+"/p/goldfish", r.ProductURL)
}

func TestRetailer_MarkupFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div data-testid="product-card">
				<h2>Publix Deli Sub</h2>
				<span data-testid="product-price">$9.49</span>
				<img src="//cdn.example/sub.jpg">
				<a href="/shop/sub">view</a>
			</div>
			</body></html>`))
	}))
	defer srv.Close()

	publix := NewPublix(5*time.Second, testUA)
	publix.baseURL = srv.URL

	r, err := publix.Search(context.Background(), "deli sub")
	assert.NoError(t, err)
	assert.Equal(t, "Publix Deli Sub", r.Name)
	assert.InDelta(t, 9.49, *r.Price, 0.001)
	assert.Equal(t, "https://cdn.example/sub.jpg", r.ImageURL)
	assert.Equal(t, srv.URL+"/shop/sub", r.ProductURL)
}

func TestRetailer_ErrorTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.RawQuery {
		case "k=blocked":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.Write([]byte(`<html><body>no results here</body></html>`))
		}
	}))
	defer srv.Close()

	amazon := NewAmazon(5*time.Second, testUA)
	amazon.baseURL = srv.URL

	_, err := amazon.Search(context.Background(), "blocked")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = amazon.Search(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShopping_PrefersConfiguredStores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="sh-dgr__content">
				<h3>Organic Milk 1gal</h3>
				<span class="a8Pemb">$7.29</span>
				<div class="aULzUe">from Walmart</div>
				<a href="https://walmart.example/milk">offer</a>
			</div>
			<div class="sh-dgr__content">
				<h3>Organic Milk 1gal</h3>
				<span class="a8Pemb">$7.99</span>
				<div class="aULzUe">Target</div>
				<a href="https://target.example/milk">offer</a>
			</div>
			</body></html>`))
	}))
	defer srv.Close()

	s := NewShopping(5*time.Second, testUA, []string{"publix", "target"})
	s.baseURL = srv.URL

	r, err := s.Search(context.Background(), "organic milk")
	assert.NoError(t, err)
	assert.Equal(t, "Target", r.Store)
	assert.InDelta(t, 7.99, *r.Price, 0.001)

	// Without a preferred match the first priced offer wins.
	s2 := NewShopping(5*time.Second, testUA, []string{"costco"})
	s2.baseURL = srv.URL
	r, err = s2.Search(context.Background(), "organic milk")
	assert.NoError(t, err)
	assert.Equal(t, "Walmart", r.Store)
	assert.InDelta(t, 7.29, *r.Price, 0.001)
}

func TestImageSearch_FiltersPlaceholders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div data-id="a"><img src="data:image/gif;base64,R0lGOD"></div>
			<div data-id="b"><img src="https://cdn.example/site-logo.png"></div>
			<div data-id="c"><img src="//cdn.example/product-shot.jpg"></div>
			<div data-id="d"><img src="https://cdn.example/second-shot.jpg"></div>
			<div data-id="e"><img src="https://cdn.example/product-shot.jpg"></div>
			</body></html>`))
	}))
	defer srv.Close()

	s := NewImageSearch(5*time.Second, testUA)
	s.baseURL = srv.URL

	urls, err := s.SearchURLs(context.Background(), "goldfish crackers", 5)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example/product-shot.jpg",
		"https://cdn.example/second-shot.jpg",
	}, urls)
}
