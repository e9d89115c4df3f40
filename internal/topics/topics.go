// internal/topics/topics.go

// Package topics enriches a repository's declared topic list with tokens
// inferred from its name, description, and primary language.
package topics

import (
	"strings"

	"github-activity-service/internal/model"
)

// Infer returns the repository's declared topics followed by inferred tokens.
// Rules are checked in a fixed order and each appends its token at most once,
// so applying Infer to an already-enriched list changes nothing.
func Infer(repo model.Repository) []string {
	topics := make([]string, 0, len(repo.Topics)+4)
	topics = append(topics, repo.Topics...)

	name := strings.ToLower(repo.Name)
	desc := ""
	if repo.Description != nil {
		desc = strings.ToLower(*repo.Description)
	}
	lang := ""
	if repo.Language != nil {
		lang = strings.ToLower(*repo.Language)
	}
	combined := name + " " + desc

	if containsAny(combined, "react", "vite", "jsx", "tsx") {
		topics = appendMissing(topics, "react")
	}
	if containsAny(combined, "tailwind", "tw-") {
		topics = appendMissing(topics, "tailwindcss")
	}
	if lang == "html" || strings.Contains(combined, "html") {
		topics = appendMissing(topics, "html")
	}
	if lang == "css" || strings.Contains(combined, "css") {
		topics = appendMissing(topics, "css")
	}
	if lang == "javascript" || lang == "typescript" {
		topics = appendMissing(topics, lang)
	}
	if lang == "python" || containsAny(combined, "python", "pyodide") {
		topics = appendMissing(topics, "python")
	}
	if containsAny(combined, "express", "node", "api", "server") {
		topics = appendMissing(topics, "nodejs")
	}
	if containsAny(combined, "mongo", "mongoose") {
		topics = appendMissing(topics, "mongodb")
	}
	// "protfolio" is a recurring typo in real repo names, matched on purpose.
	if containsAny(combined, "portfolio", "protfolio", "profile") {
		topics = appendMissing(topics, "portfolio")
	}
	if contains(topics, "react") && (contains(topics, "nodejs") || contains(topics, "mongodb")) {
		topics = appendMissing(topics, "fullstack")
	}

	return topics
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, t := range list {
		if t == s {
			return true
		}
	}
	return false
}

func appendMissing(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}
