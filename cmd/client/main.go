package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/client"
	"github.com/recipeshare/recipeshare-backend/internal/logging"
)

// Command client deletes the signed-in user's account the same way the app
// does: server cleanup first, own-identity removal only as a fallback.
func main() {
	apiURL := flag.String("api", envOr("RECIPESHARE_API_URL", "http://localhost:8080"), "account API base URL")
	apiKey := flag.String("api-key", os.Getenv("FIREBASE_WEB_API_KEY"), "Firebase web API key")
	uid := flag.String("uid", "", "uid of the signed-in user (for logs)")
	token := flag.String("token", os.Getenv("RECIPESHARE_ID_TOKEN"), "Firebase ID token of the signed-in user")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	logger := logging.New(logging.Options{ServiceName: "recipeshare-client", Format: "console"})

	if !*yes && !confirm() {
		fmt.Println("Cancelled.")
		return
	}

	sessions := client.NewMemorySessionStore(&client.Session{UID: *uid, IDToken: strings.TrimSpace(*token)})
	in := client.NewInitiator(
		sessions,
		client.NewCleanupClient(*apiURL, nil),
		client.NewToolkitClient("", *apiKey, nil),
		client.NewLogNotifier(logger),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	out, err := in.DeleteAccount(ctx)
	if err != nil {
		os.Exit(1)
	}
	if out.Result != nil {
		fmt.Printf("deleted %d documents in %d batches\n", out.Result.DocumentsDeleted, out.Result.BatchesCommitted)
	}
}

func confirm() bool {
	fmt.Print("This permanently deletes your account and all of your recipes. Type DELETE to continue: ")
	var answer string
	_, _ = fmt.Scanln(&answer)
	return answer == "DELETE"
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
