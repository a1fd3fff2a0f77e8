// Command storecheck verifies the storage configuration from the
// command line: it opens the store the same way the pipeline does,
// prints which backend answered and shows what is currently held.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/voicewatch/voicewatch/internal/cache"
	"github.com/voicewatch/voicewatch/internal/store"
)

func main() {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	if dbURL == "" {
		fmt.Println("🔌 DATABASE_URL not set, checking file storage only...")
	} else {
		fmt.Println("🔌 Testing PostgreSQL connection...")
		fmt.Printf("Database URL: %s\n\n", maskPassword(dbURL))
	}

	st, err := store.New(dbURL, dataDir, 10)
	if err != nil {
		log.Fatalf("❌ Failed to open storage: %v", err)
	}
	defer st.Close()

	fmt.Printf("✅ Storage ready, active backend: %s\n", st.State())

	stats, err := st.GetStats()
	if err != nil {
		log.Printf("⚠️ Failed to get stats: %v", err)
	} else {
		fmt.Println("\n📊 Storage Statistics:")
		fmt.Printf("  Content items: %d\n", stats["content_items"])
		fmt.Printf("  Reactions:     %d\n", stats["reactions"])
		fmt.Printf("  Run summaries: %d\n", stats["run_summaries"])
	}

	items, err := st.GetRecentItems(7 * 24 * time.Hour)
	if err != nil {
		log.Printf("⚠️ Failed to get recent items: %v", err)
	} else {
		fmt.Println("\n📰 Recent Items (last 7 days):")
		if len(items) == 0 {
			fmt.Println("  (nothing stored yet)")
		}
		for i, item := range items {
			if i >= 5 {
				fmt.Printf("  ... and %d more\n", len(items)-5)
				break
			}
			fmt.Printf("  %d. %s\n", i+1, item.Title)
			fmt.Printf("     Source: %s | Stored: %s\n", item.Source, item.StoredAt.Format("2006-01-02 15:04:05"))
		}
	}

	runs, err := st.GetRecentRuns(5)
	if err != nil {
		log.Printf("⚠️ Failed to get run history: %v", err)
	} else {
		fmt.Println("\n🔄 Recent Runs:")
		if len(runs) == 0 {
			fmt.Println("  (no runs recorded yet)")
		}
		for _, run := range runs {
			fmt.Printf("  %s  found=%d processed=%d reddit=%d\n",
				run.Date, run.ArticlesFound, run.ArticlesProcessed, run.RedditPosts)
		}
	}

	fmt.Println("\n🧪 Testing duplicate detection...")
	hash := cache.Hash("Test News Article", "https://example.com/test")
	fmt.Printf("  Generated hash: %s\n", hash)

	if dbURL != "" && st.State() != store.StatePrimary {
		fmt.Println("\n❌ DATABASE_URL is set but the database did not answer; writes are going to the file fallback.")
		os.Exit(1)
	}

	fmt.Println("\n✅ Storage check complete.")
}

func maskPassword(dbURL string) string {
	// Simple password masking for display
	if len(dbURL) > 50 {
		return dbURL[:30] + "***" + dbURL[len(dbURL)-20:]
	}
	return dbURL
}
