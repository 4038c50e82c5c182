package model

import "time"

// DemoProduct returns a deterministic sample product used by the --demo CLI
// flag and by tests that need a fully populated record without scraping.
func DemoProduct() ProductRecord {
	return ProductRecord{
		Name:        "FlowBase (Demo)",
		Tagline:     "Simple, intuitive CRM tool created specifically for freelancers",
		Description: "FlowBase is a lightweight, intuitive SaaS platform designed to help freelancers and small teams organize their client work, projects, and tasks all in one place. It provides easy-to-use dashboards and reporting features, so teams can track progress, identify bottlenecks, and make informed decisions faster.",
		Topics:      []string{"SaaS", "Startups", "Productivity Software", "Business Productivity", "Sales and Marketing"},
		CanonicalURL: "https://flowbase.example.com",
		SourceURL:    "https://betalist.com/startups/flowbase",
		FeaturedDate: "November 18, 2025",
		ScrapedAt:    time.Now().UTC(),
	}
}
