package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors         int
	Registrations       int
	LoginSuccess        int
	LoginFailures       int
	ReferralsRecorded   int
	ReferralsSkipped    int
	CommissionsCredited int
	PaymentsVerified    int
	PaymentFailures     int
	PayoutsCreated      int
	PayoutsReversed     int
	AccessDenied        int
	AffiliateActivity   map[string]int
	ErrorPatterns       map[string]int
}

var (
	affiliateRegex = regexp.MustCompile(`affiliate[= ](\d+)`)
	logPrefixRegex = regexp.MustCompile(`^(INFO|ERROR): \S+ \S+ \S+: `)
)

func main() {
	logDir := flag.String("dir", "./logs", "directory holding the log files")
	date := flag.String("date", time.Now().Format("2006-01-02"), "day to analyze (YYYY-MM-DD)")
	flag.Parse()

	stats := &LogStats{
		AffiliateActivity: make(map[string]int),
		ErrorPatterns:     make(map[string]int),
	}

	analyzeErrorLogs(filepath.Join(*logDir, fmt.Sprintf("error-%s.log", *date)), stats)
	analyzeInfoLogs(filepath.Join(*logDir, fmt.Sprintf("info-%s.log", *date)), stats)

	printReport(*date, stats)
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		switch {
		case strings.Contains(line, "Login failed"):
			stats.LoginFailures++
		case strings.Contains(line, "Payment verification failed"):
			stats.PaymentFailures++
		case strings.Contains(line, "Blocked user attempted access"),
			strings.Contains(line, "Non-admin user attempted admin access"):
			stats.AccessDenied++
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.Contains(line, "User registered"):
			stats.Registrations++
		case strings.Contains(line, "logged in"):
			stats.LoginSuccess++
		case strings.Contains(line, "Referral created"):
			stats.ReferralsRecorded++
			extractAffiliateActivity(line, stats)
		case strings.Contains(line, "not recorded for user"):
			stats.ReferralsSkipped++
		case strings.Contains(line, "credited to affiliate"):
			stats.CommissionsCredited++
			extractAffiliateActivity(line, stats)
		case strings.Contains(line, "Payment verified"):
			stats.PaymentsVerified++
		case strings.Contains(line, "Payout") && strings.Contains(line, "created by admin"):
			stats.PayoutsCreated++
		case strings.Contains(line, "Payout") && strings.Contains(line, "reversed"):
			stats.PayoutsReversed++
		}
	}
}

func extractAffiliateActivity(line string, stats *LogStats) {
	if m := affiliateRegex.FindStringSubmatch(line); m != nil {
		stats.AffiliateActivity["affiliate "+m[1]]++
	}
}

// extractErrorPattern keeps the message up to its first colon, without the log prefix
func extractErrorPattern(line string, stats *LogStats) {
	msg := logPrefixRegex.ReplaceAllString(line, "")
	if i := strings.Index(msg, ":"); i > 0 {
		msg = msg[:i]
	}
	if msg = strings.TrimSpace(msg); msg != "" {
		stats.ErrorPatterns[msg]++
	}
}

func printReport(date string, stats *LogStats) {
	fmt.Println("\n=== MenuSphere Log Analysis Report ===")
	fmt.Println("Day:", date)
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Accounts:")
	fmt.Printf("   Registrations: %d\n", stats.Registrations)
	fmt.Printf("   Successful Logins: %d\n", stats.LoginSuccess)
	fmt.Printf("   Failed Logins: %d\n", stats.LoginFailures)
	fmt.Printf("   Denied Access: %d\n", stats.AccessDenied)

	fmt.Println("\n2. Affiliate Program:")
	fmt.Printf("   Referrals Recorded: %d\n", stats.ReferralsRecorded)
	fmt.Printf("   Referrals Skipped: %d\n", stats.ReferralsSkipped)
	fmt.Printf("   Commissions Credited: %d\n", stats.CommissionsCredited)
	fmt.Printf("   Payouts Created: %d\n", stats.PayoutsCreated)
	fmt.Printf("   Payouts Reversed: %d\n", stats.PayoutsReversed)

	fmt.Println("\n3. Payments:")
	fmt.Printf("   Verified: %d\n", stats.PaymentsVerified)
	fmt.Printf("   Failed Verifications: %d\n", stats.PaymentFailures)

	fmt.Println("\n4. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n5. Most Active Affiliates:")
	printTop(stats.AffiliateActivity, 5, "events")

	fmt.Println("\n6. Most Common Errors:")
	printTop(stats.ErrorPatterns, 5, "occurrences")
}

func printTop(counts map[string]int, limit int, unit string) {
	type entry struct {
		key   string
		count int
	}

	entries := make([]entry, 0, len(counts))
	for key, count := range counts {
		entries = append(entries, entry{key, count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d %s\n", e.key, e.count, unit)
	}
}
