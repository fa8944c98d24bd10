package main

import (
	"flag"
	"fmt"
	"os"

	"papertrade-go/internal/adminapi"
	"papertrade-go/internal/auth"
	"papertrade-go/internal/config"
	"papertrade-go/internal/database"
	"papertrade-go/internal/logger"
	"papertrade-go/internal/models"

	"go.uber.org/zap"
)

// adminctl is the operator CLI. Account bootstrap writes the users table
// directly; everything touching the ledger goes through the running server's
// admin API, because the server daemon is the only process allowed to mutate
// ledger state.
func main() {
	var (
		configPath  = flag.String("config", "./configs", "path to the config directory (used by -create-admin)")
		serverURL   = flag.String("server", "http://localhost:8080", "base URL of the running server")
		createAdmin = flag.Bool("create-admin", false, "create an admin account (requires -email and -password)")
		email       = flag.String("email", "", "admin email")
		password    = flag.String("password", "", "admin password")
		listPending = flag.Bool("list-pending", false, "list pending transactions across all users")
		reviewTx    = flag.String("review", "", "transaction id to review (requires -user and -approve/-reject)")
		userID      = flag.Uint("user", 0, "user id owning the reviewed transaction")
		approve     = flag.Bool("approve", false, "approve the reviewed transaction")
		reject      = flag.Bool("reject", false, "reject the reviewed transaction")
	)
	flag.Parse()

	switch {
	case *createAdmin:
		if *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "-create-admin requires -email and -password")
			os.Exit(1)
		}
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		log, err := logger.NewLogger("warn", cfg.Logger.Format, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()

		db, err := database.NewDatabase(&cfg)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}

		svc := auth.NewService(db, &cfg.Auth)
		user, err := svc.Register(*email, *password, "Administrator", models.RoleAdmin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create admin: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin account %s (id %d)\n", user.Email, user.ID)

	case *listPending:
		client := login(*serverURL, *email, *password)
		txs, err := client.PendingTransactions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list pending transactions: %v\n", err)
			os.Exit(1)
		}
		for _, tx := range txs {
			fmt.Printf("user=%d id=%s type=%s amount=%.2f requested=%s\n",
				tx.UserID, tx.ID, tx.Type, tx.Amount, tx.Timestamp.Format("2006-01-02 15:04:05"))
		}

	case *reviewTx != "":
		if *userID == 0 || *approve == *reject {
			fmt.Fprintln(os.Stderr, "-review requires -user and exactly one of -approve/-reject")
			os.Exit(1)
		}
		client := login(*serverURL, *email, *password)
		tx, err := client.ReviewTransaction(*userID, *reviewTx, *approve)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to review transaction: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Transaction %s is now %s\n", tx.ID, tx.Status)

	default:
		flag.Usage()
		os.Exit(1)
	}
}

// login authenticates the admin account against the running server.
func login(serverURL, email, password string) *adminapi.Client {
	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "-email and -password are required to talk to the server")
		os.Exit(1)
	}
	client := adminapi.NewClient(serverURL)
	if err := client.Login(email, password); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to authenticate against %s: %v\n", serverURL, err)
		os.Exit(1)
	}
	return client
}
