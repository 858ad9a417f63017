// Package narrative turns parsed odds and precedents into market
// narratives: favorite shifts, handicap and goal-line verdicts, indirect
// comparisons and their HTML and Markdown renderings.
package narrative
