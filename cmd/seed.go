package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/berge472/izzymart/core/config"
	"github.com/berge472/izzymart/core/database"
	"github.com/berge472/izzymart/core/logger"
	"github.com/berge472/izzymart/core/storage"
	"github.com/berge472/izzymart/feature/assets"
	"github.com/berge472/izzymart/feature/catalog"
	"github.com/berge472/izzymart/feature/catalog/models"
	"github.com/berge472/izzymart/feature/lookup/sources"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedWithImages bool

type produceItem struct {
	name     string
	price    float64
	category string
}

// Common produce with realistic prices. UPCs are synthesized PLU codes
// (41000 and up) so scanned produce stickers resolve against the catalog.
var produceItems = []produceItem{
	{"Apples - Gala", 1.99, "Fruits"},
	{"Apples - Honeycrisp", 2.49, "Fruits"},
	{"Apples - Granny Smith", 1.89, "Fruits"},
	{"Apples - Fuji", 2.19, "Fruits"},
	{"Bananas", 0.59, "Fruits"},
	{"Strawberries", 3.99, "Fruits"},
	{"Blueberries", 4.99, "Fruits"},
	{"Raspberries", 4.99, "Fruits"},
	{"Blackberries", 4.49, "Fruits"},
	{"Grapes - Green Seedless", 2.99, "Fruits"},
	{"Grapes - Red Seedless", 2.99, "Fruits"},
	{"Oranges - Navel", 1.49, "Fruits"},
	{"Oranges - Valencia", 1.39, "Fruits"},
	{"Lemons", 0.79, "Fruits"},
	{"Limes", 0.69, "Fruits"},
	{"Grapefruit - Ruby Red", 1.29, "Fruits"},
	{"Watermelon", 5.99, "Fruits"},
	{"Cantaloupe", 3.99, "Fruits"},
	{"Honeydew Melon", 3.49, "Fruits"},
	{"Pineapple", 3.99, "Fruits"},
	{"Mango", 1.99, "Fruits"},
	{"Papaya", 2.99, "Fruits"},
	{"Kiwi", 0.99, "Fruits"},
	{"Pears - Bartlett", 1.79, "Fruits"},
	{"Pears - Anjou", 1.89, "Fruits"},
	{"Peaches", 2.49, "Fruits"},
	{"Nectarines", 2.39, "Fruits"},
	{"Plums", 2.29, "Fruits"},
	{"Cherries", 5.99, "Fruits"},
	{"Pomegranate", 2.99, "Fruits"},
	{"Avocados", 1.99, "Vegetables"},
	{"Tomatoes - Roma", 1.99, "Vegetables"},
	{"Tomatoes - Vine Ripened", 2.49, "Vegetables"},
	{"Tomatoes - Cherry", 3.49, "Vegetables"},
	{"Tomatoes - Grape", 3.29, "Vegetables"},
	{"Lettuce - Romaine", 2.49, "Vegetables"},
	{"Lettuce - Iceberg", 1.99, "Vegetables"},
	{"Lettuce - Butter", 2.99, "Vegetables"},
	{"Spinach - Fresh", 2.99, "Vegetables"},
	{"Kale", 2.49, "Vegetables"},
	{"Arugula", 3.49, "Vegetables"},
	{"Mixed Salad Greens", 3.99, "Vegetables"},
	{"Cucumbers", 1.29, "Vegetables"},
	{"Bell Peppers - Red", 1.99, "Vegetables"},
	{"Bell Peppers - Green", 1.49, "Vegetables"},
	{"Bell Peppers - Yellow", 1.89, "Vegetables"},
	{"Bell Peppers - Orange", 1.89, "Vegetables"},
	{"Jalapeno Peppers", 0.99, "Vegetables"},
	{"Serrano Peppers", 1.29, "Vegetables"},
	{"Onions - Yellow", 1.49, "Vegetables"},
	{"Onions - Red", 1.69, "Vegetables"},
	{"Onions - White", 1.59, "Vegetables"},
	{"Green Onions", 1.29, "Vegetables"},
	{"Garlic", 0.99, "Vegetables"},
	{"Ginger Root", 2.99, "Vegetables"},
	{"Carrots", 1.49, "Vegetables"},
	{"Celery", 2.49, "Vegetables"},
	{"Broccoli", 2.99, "Vegetables"},
	{"Cauliflower", 3.49, "Vegetables"},
	{"Cabbage - Green", 1.99, "Vegetables"},
	{"Cabbage - Red", 2.29, "Vegetables"},
	{"Brussels Sprouts", 3.99, "Vegetables"},
	{"Asparagus", 4.99, "Vegetables"},
	{"Green Beans", 2.99, "Vegetables"},
	{"Zucchini", 1.99, "Vegetables"},
	{"Yellow Squash", 1.99, "Vegetables"},
	{"Eggplant", 2.49, "Vegetables"},
	{"Mushrooms - White Button", 3.49, "Vegetables"},
	{"Mushrooms - Portobello", 4.99, "Vegetables"},
	{"Mushrooms - Shiitake", 5.99, "Vegetables"},
	{"Corn on the Cob", 0.99, "Vegetables"},
	{"Sweet Potatoes", 1.79, "Vegetables"},
	{"Potatoes - Russet", 1.29, "Vegetables"},
	{"Potatoes - Red", 1.49, "Vegetables"},
	{"Potatoes - Yukon Gold", 1.69, "Vegetables"},
	{"Beets", 2.49, "Vegetables"},
	{"Radishes", 1.99, "Vegetables"},
	{"Turnips", 1.79, "Vegetables"},
	{"Parsnips", 2.29, "Vegetables"},
	{"Basil - Fresh", 2.99, "Herbs"},
	{"Cilantro - Fresh", 1.49, "Herbs"},
	{"Parsley - Fresh", 1.49, "Herbs"},
	{"Mint - Fresh", 2.49, "Herbs"},
	{"Rosemary - Fresh", 2.99, "Herbs"},
	{"Thyme - Fresh", 2.99, "Herbs"},
	{"Oregano - Fresh", 2.99, "Herbs"},
	{"Dill - Fresh", 2.49, "Herbs"},
	{"Artichokes", 3.99, "Vegetables"},
	{"Leeks", 2.99, "Vegetables"},
	{"Bok Choy", 2.49, "Vegetables"},
	{"Napa Cabbage", 3.49, "Vegetables"},
	{"Radicchio", 3.99, "Vegetables"},
	{"Endive", 3.49, "Vegetables"},
	{"Fennel", 2.99, "Vegetables"},
	{"Jicama", 2.49, "Vegetables"},
	{"Kohlrabi", 2.29, "Vegetables"},
	{"Rutabaga", 1.99, "Vegetables"},
	{"Shallots", 3.49, "Vegetables"},
	{"Snow Peas", 4.49, "Vegetables"},
	{"Sugar Snap Peas", 4.49, "Vegetables"},
	{"Okra", 3.49, "Vegetables"},
	{"Tomatillos", 2.99, "Vegetables"},
	{"Horseradish Root", 4.99, "Vegetables"},
	{"Water Chestnuts - Fresh", 3.99, "Vegetables"},
	{"Bean Sprouts", 2.49, "Vegetables"},
	{"Alfalfa Sprouts", 2.99, "Vegetables"},
	{"Butternut Squash", 2.99, "Vegetables"},
	{"Acorn Squash", 2.49, "Vegetables"},
	{"Spaghetti Squash", 3.49, "Vegetables"},
	{"Pumpkin", 4.99, "Vegetables"},
}

// seedCmd bulk-inserts the produce catalog. Items are keyed by synthetic PLU
// codes and written through the catalog's upsert path, so re-running the
// command refreshes instead of duplicating.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog with common produce items",
	Long: `Inserts common produce items (fruits, vegetables, herbs) keyed by
synthetic PLU codes. With --images, a product photo is fetched for each item
through image search and stored in the asset store.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to catalog database", zap.Error(err))
		}

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		ctx := context.Background()
		if seedWithImages {
			if err := storage.EnsureBucket(ctx, store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
				logg.Fatal("Failed to ensure bucket", zap.Error(err))
			}
		}

		assetSvc := assets.NewService(db, store, cfg.Storage.Bucket, logg)
		if err := assetSvc.Migrate(); err != nil {
			logg.Fatal("Failed to migrate asset schema", zap.Error(err))
		}
		catalogSvc := catalog.NewService(db, assetSvc, logg)
		if err := catalogSvc.Migrate(); err != nil {
			logg.Fatal("Failed to migrate catalog schema", zap.Error(err))
		}

		timeout := time.Duration(cfg.Lookup.TimeoutSeconds) * time.Second
		imageSearch := sources.NewImageSearch(timeout, cfg.Lookup.EffectiveUserAgent())
		httpc := &http.Client{Timeout: timeout}

		seeded, withImage := 0, 0
		for i, item := range produceItems {
			plu := fmt.Sprintf("4%d", 1000+i)

			price := item.price
			product := &models.Product{
				UPC:         plu,
				ProductType: models.TypeFood,
				Name:        item.name,
				Brand:       "Fresh Produce",
				Price:       &price,
				Tags:        []string{item.category},
				Metadata:    map[string]any{"category": item.category},
			}

			if seedWithImages {
				if assetID := fetchProduceImage(ctx, imageSearch, httpc, assetSvc, item.name, logg); assetID != "" {
					product.Images = []string{assetID}
					product.Metadata[models.MetaImageSource] = "Google Images"
					withImage++
				}
			}

			if _, err := catalogSvc.Upsert(ctx, product); err != nil {
				logg.Error("Failed to seed item", zap.String("name", item.name), zap.Error(err))
				continue
			}
			seeded++
		}

		logg.Info("Produce seeding complete",
			zap.Int("seeded", seeded),
			zap.Int("with_image", withImage),
			zap.Int("total", len(produceItems)))
	},
}

func fetchProduceImage(ctx context.Context, search *sources.ImageSearch, httpc *http.Client, assetSvc *assets.Service, name string, logg *zap.Logger) string {
	urls, err := search.SearchURLs(ctx, name, 1)
	if err != nil {
		logg.Warn("No image found for produce item", zap.String("name", name), zap.Error(err))
		return ""
	}

	resp, err := httpc.Get(urls[0])
	if err != nil {
		logg.Warn("Image download failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logg.Warn("Image download failed", zap.String("name", name), zap.Int("status", resp.StatusCode))
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		logg.Warn("Image read failed", zap.String("name", name), zap.Error(err))
		return ""
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	asset, err := assetSvc.Put(ctx, data, name+".jpg", contentType)
	if err != nil {
		logg.Warn("Image store failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	return asset.ID
}

func init() {
	seedCmd.Flags().BoolVar(&seedWithImages, "images", false, "fetch a product photo for each item via image search")
	RootCmd.AddCommand(seedCmd)
}
