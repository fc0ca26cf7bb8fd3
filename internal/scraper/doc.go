// Package scraper fetches the public MMA schedule pages and turns them into events.
//
// Fetching selects the page's date headings (h3) and links (a[href]) in document
// order. Parsing is a single pass over those elements: event titles start a new
// event, headings carry its date, every other link is a fight, and the
// "MMA Fighting" footer link ends the schedule.
package scraper
