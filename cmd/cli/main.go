package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/yourorg/talentmatch/internal/infrastructure/logger"
	"github.com/yourorg/talentmatch/internal/security/auth"
	"github.com/yourorg/talentmatch/pkg/config"
	"github.com/yourorg/talentmatch/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "token":
		handleToken(args)
	case "migrate":
		runMigrations(args)
	case "swipe":
		handleSwipe(args)
	case "matches":
		listMatches(args)
	case "feed":
		showFeed(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`talentmatch CLI

Usage:
  talentmatch token mint -user <id> -role <jobseeker|employer> [-email <email>] [-ttl <duration>]
  talentmatch migrate
  talentmatch swipe -as <jobseeker|employer> -target <id> -interested <true|false>
  talentmatch matches
  talentmatch feed [-limit n] [-offset n] [-sort match]

Environment:
  TALENTMATCH_API    API base URL (default http://localhost:8080/api)
  TALENTMATCH_TOKEN  Bearer token for API commands
  JWT_SECRET         Signing secret for token mint`)
}

// Token commands

func handleToken(args []string) {
	if len(args) < 1 || args[0] != "mint" {
		fmt.Println("Usage: talentmatch token mint -user <id> -role <role>")
		return
	}

	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	user := fs.String("user", "", "user ID")
	role := fs.String("role", "", "jobseeker or employer")
	email := fs.String("email", "", "email claim (optional)")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")

	fs.Parse(args[1:])

	if *user == "" || *role == "" {
		fmt.Println("Error: user and role are required")
		fs.PrintDefaults()
		return
	}

	tm := auth.NewTokenManager(os.Getenv("JWT_SECRET"), "talentmatch")
	token, err := tm.GenerateToken(*user, *role, *email, *ttl)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

// Migration command

func runMigrations(args []string) {
	_ = args

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}, log)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Migrations applied")
}

// API commands

func handleSwipe(args []string) {
	fs := flag.NewFlagSet("swipe", flag.ExitOnError)
	as := fs.String("as", "", "acting role: jobseeker or employer")
	target := fs.String("target", "", "counterpart user ID")
	interested := fs.Bool("interested", true, "decision")

	fs.Parse(args)

	if *as == "" || *target == "" {
		fmt.Println("Error: as and target are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{"interested": *interested}
	if *as == "jobseeker" {
		payload["employerId"] = *target
	} else {
		payload["jobseekerId"] = *target
	}

	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/swipe/"+*as, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	setAuth(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != 201 {
		fmt.Printf("✗ %v (%d)\n", result["error"], resp.StatusCode)
		return
	}
	if mutual, _ := result["isMutualMatch"].(bool); mutual {
		fmt.Println("✓ Swipe recorded: it's a match!")
	} else {
		fmt.Println("✓ Swipe recorded")
	}
}

func listMatches(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/matches", nil)
	setAuth(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Matches []map[string]interface{} `json:"matches"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tJOBSEEKER\tEMPLOYER\tLAST ACTIVITY")
	for _, m := range result.Matches {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			m["id"], m["status"], m["jobseekerId"], m["employerId"], m["lastActivityAt"])
	}
	w.Flush()
}

func showFeed(args []string) {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	limit := fs.Int("limit", 0, "page size")
	offset := fs.Int("offset", 0, "page offset")
	sortBy := fs.String("sort", "", "set to 'match' for preference ranking")

	fs.Parse(args)

	url := fmt.Sprintf("%s/matches/feed?limit=%d&offset=%d", getAPIURL(), *limit, *offset)
	if *sortBy != "" {
		url += "&sortBy=" + *sortBy
	}
	req, _ := http.NewRequest("GET", url, nil)
	setAuth(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Data []map[string]interface{} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSCORE")
	for _, c := range result.Data {
		score := "-"
		if s, ok := c["matchScore"].(float64); ok {
			score = fmt.Sprintf("%.2f", s)
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%s\n", c["id"], c["name"], c["userType"], score)
	}
	w.Flush()
}

func getAPIURL() string {
	if url := os.Getenv("TALENTMATCH_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func setAuth(req *http.Request) {
	if token := os.Getenv("TALENTMATCH_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
