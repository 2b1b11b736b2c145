package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

func main() {
	var (
		dir        = flag.String("dir", ".", "Directory to check")
		configPath = flag.String("config", ".errorcode.yml", "Path to configuration file")
	)
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Warning: Using default configuration: %v", err)
		config, _ = loadConfig("")
	}

	checker := NewErrorCodeChecker(config.Verbose)

	fmt.Printf("Checking error code usage in directory: %s\n", *dir)
	fmt.Printf("Excluding paths: %s\n\n", strings.Join(config.ExcludePaths, ", "))

	if err := checker.CheckDirectory(*dir, config.ExcludePaths); err != nil {
		log.Fatalf("Error checking directory: %v", err)
	}

	allUsed, report := checker.Report()
	for _, line := range report {
		fmt.Println(line)
	}
	fmt.Println()

	failed := false
	if !allUsed && config.ExitOnUnused {
		failed = true
	}

	duplicates := checker.Duplicates()
	if len(duplicates) > 0 {
		codes := make([]string, 0, len(duplicates))
		for code := range duplicates {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		fmt.Println("Duplicate error codes:")
		for _, code := range codes {
			for _, info := range duplicates[code] {
				fmt.Printf("  %s declared as %s at %s:%d\n", code, info.Name, info.File, info.Line)
			}
		}
		fmt.Println()
		failed = failed || config.ExitOnDuplicate
	}

	if config.CheckForbidden {
		violations, err := checker.CheckForbiddenPatterns(config.ForbiddenPatterns)
		if err != nil {
			log.Fatalf("Error checking forbidden patterns: %v", err)
		}
		for _, v := range violations {
			fmt.Printf("  %s:%d matches %s: %s\n", v.File, v.Line, v.Pattern, v.Text)
		}
		if len(violations) > 0 {
			fmt.Println()
			failed = failed || config.ExitOnForbidden
		}
	}

	if failed {
		fmt.Println("Exiting due to error code violations")
		os.Exit(1)
	}
	fmt.Println("All checks completed successfully!")
}
