package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/berge472/izzymart/feature/catalog/models"
)

// Books resolves ISBNs against Open Library, falling back to Google Books
// when the primary registry has no record.
type Books struct {
	fetch          *fetcher
	openLibraryURL string
	googleBooksURL string
}

// NewBooks creates the book registry adapter.
func NewBooks(timeout time.Duration, userAgent string) *Books {
	return &Books{
		fetch:          newFetcher(timeout, userAgent),
		openLibraryURL: "https://openlibrary.org",
		googleBooksURL: "https://www.googleapis.com/books/v1",
	}
}

// LookupISBN fetches a book record by its ISBN-10 or ISBN-13.
func (b *Books) LookupISBN(ctx context.Context, isbn string) (*Result, error) {
	r, err := b.lookupOpenLibrary(ctx, isbn)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return b.lookupGoogleBooks(ctx, isbn)
}

type olBook struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	URL        string `json:"url"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	PublishDate string `json:"publish_date"`
	NumberPages int    `json:"number_of_pages"`
	Authors     []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Subjects []struct {
		Name string `json:"name"`
	} `json:"subjects"`
	Cover struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
		Small  string `json:"small"`
	} `json:"cover"`
}

func (b *Books) lookupOpenLibrary(ctx context.Context, isbn string) (*Result, error) {
	url := fmt.Sprintf("%s/api/books?bibkeys=ISBN:%s&format=json&jscmd=data", b.openLibraryURL, isbn)

	var resp map[string]olBook
	if err := b.fetch.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	book, ok := resp["ISBN:"+isbn]
	if !ok {
		return nil, fmt.Errorf("%w: isbn %s not in open library", ErrNotFound, isbn)
	}

	info := &models.BookInfo{
		ISBN:            isbn,
		Publisher:       firstPublisher(book),
		PublicationDate: book.PublishDate,
		PageCount:       book.NumberPages,
	}

	authors := make([]string, 0, len(book.Authors))
	for _, a := range book.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	info.Author = strings.Join(authors, ", ")

	// Cap subjects the same way tags are capped in search listings.
	for _, s := range book.Subjects {
		if len(info.Categories) >= 5 {
			break
		}
		if s.Name != "" {
			info.Categories = append(info.Categories, s.Name)
		}
	}

	r := &Result{
		Name:        book.Title,
		Description: book.Subtitle,
		ImageURL:    firstNonEmpty(book.Cover.Large, book.Cover.Medium, book.Cover.Small),
		Tags:        info.Categories,
		Book:        info,
		Metadata:    map[string]any{"source": "Open Library"},
	}
	if book.URL != "" {
		r.Metadata["openlibrary_url"] = book.URL
	}
	return r, nil
}

type gbVolume struct {
	SelfLink   string `json:"selfLink"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		Authors       []string `json:"authors"`
		Publisher     string   `json:"publisher"`
		PublishedDate string   `json:"publishedDate"`
		PageCount     int      `json:"pageCount"`
		Language      string   `json:"language"`
		Categories    []string `json:"categories"`
		ImageLinks    struct {
			ExtraLarge     string `json:"extraLarge"`
			Large          string `json:"large"`
			Medium         string `json:"medium"`
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func (b *Books) lookupGoogleBooks(ctx context.Context, isbn string) (*Result, error) {
	url := fmt.Sprintf("%s/volumes?q=isbn:%s", b.googleBooksURL, isbn)

	var resp struct {
		TotalItems int        `json:"totalItems"`
		Items      []gbVolume `json:"items"`
	}
	if err := b.fetch.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.TotalItems == 0 || len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: isbn %s not in google books", ErrNotFound, isbn)
	}

	v := resp.Items[0].VolumeInfo
	info := &models.BookInfo{
		ISBN:            isbn,
		Author:          strings.Join(v.Authors, ", "),
		Publisher:       v.Publisher,
		PublicationDate: v.PublishedDate,
		PageCount:       v.PageCount,
		Language:        v.Language,
		Categories:      v.Categories,
	}

	r := &Result{
		Name:        v.Title,
		Description: v.Description,
		ImageURL: firstNonEmpty(v.ImageLinks.ExtraLarge, v.ImageLinks.Large,
			v.ImageLinks.Medium, v.ImageLinks.Thumbnail, v.ImageLinks.SmallThumbnail),
		Tags:     v.Categories,
		Book:     info,
		Metadata: map[string]any{"source": "Google Books"},
	}
	if resp.Items[0].SelfLink != "" {
		r.Metadata["google_books_url"] = resp.Items[0].SelfLink
	}
	return r, nil
}

func firstPublisher(b olBook) string {
	if len(b.Publishers) == 0 {
		return ""
	}
	return b.Publishers[0].Name
}
