// Package itmd parses itinerary Markdown ("itmd") into a structured
// document: dated headings, transportation, stay and activity events with
// resolved times, destinations, normalized prices and alert callouts.
//
// # Quick Start
//
//	p, err := itmd.NewParser()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := p.Parse(ctx, itmd.Input{Markdown: source})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := doc.JSON(true)
//
// Parse only fails on cancellation, oversized input or a collaborator
// failure. Malformed content is kept: unreadable event lines pass through as
// blocks, and anomalies are recorded as event warnings or in
// Document.Diagnostics.
//
// # Dialect
//
//	---
//	title: Japan
//	timezone: Asia/Tokyo
//	currency: JPY
//	---
//
//	## 2024-03-10 @Asia/Tokyo
//
//	> [09:30]-[11:45] train Nozomi 21 from Tokyo^東京 to Kyoto
//	> - cost: ¥14,170
//	> - seat: 7A
//
//	> [!TIP] Buy the Suica card at the airport.
//
// A level-2 heading holding a date sets the date and timezone context for
// the events that follow. An event is a quote whose first line is a header:
// an optional time ([hh:mm], a range, [AM] or [PM], each clock optionally
// with @zone and +N days), an event type keyword, then a title followed by
// "from A to B via C", "at A", ":: A", ":: A - B" or "- A - B". A caret
// separates a primary name from its alternate.
//
// # Pipeline
//
//  1. Source preprocessing (byte order mark, line endings)
//  2. Frontmatter extraction, which seeds the Policy for this document
//  3. Markdown tokenization via Goldmark (GFM)
//  4. Alert recognition over quote blocks
//  5. Event assembly in a single top-down pass
//
// # Configuration
//
//	pol := itmd.DefaultPolicy()
//	pol.TZFallback = "Europe/Paris"
//	pol.CurrencyFallback = "EUR"
//
//	p, err := itmd.NewParser(
//	    itmd.WithPolicy(pol),
//	    itmd.WithPassthroughHTML(true),
//	    itmd.WithRates("EUR", rates),
//	)
//
// A Parser is safe for concurrent use; use ResolveWorkers to size a pool of
// goroutines sharing one Parser.
//
// # Output
//
// Document.JSON and Document.YAML share one shape, described by Schema.
// Document.ICS exports events with a resolved start as an iCalendar feed.
// Parser.Stats totals prices per currency and per base type.
package itmd
