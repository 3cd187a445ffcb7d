package builder

import (
	"fmt"
)

// NewConditionalNode creates a generic node running the "conditional"
// executor: it evaluates an expr-lang boolean expression against
// input. Mainly useful standalone or as a BestOfNNode's inner node;
// RouterNode carries its own inline conditions per route instead.
func NewConditionalNode(id, title, expression string, opts ...NodeOption) *NodeBuilder {
	allOpts := []NodeOption{
		WithConfigValue("condition_type", "expression"),
		WithConfigValue("condition", expression),
	}
	allOpts = append(allOpts, opts...)
	return NewNode(id, "conditional", title, allOpts...)
}

// NewMergeNode creates a generic node running the "merge" executor,
// the non-gating counterpart to CoalesceNode. strategy must be "all"
// or "any".
func NewMergeNode(id, title, strategy string, opts ...NodeOption) *NodeBuilder {
	allOpts := []NodeOption{WithConfigValue("merge_strategy", strategy)}
	allOpts = append(allOpts, opts...)
	return NewNode(id, "merge", title, allOpts...)
}

// NewHTMLCleanNode creates a generic node running the "html_clean"
// executor, extracting readable text from HTML input.
func NewHTMLCleanNode(id, title string, opts ...NodeOption) *NodeBuilder {
	return NewNode(id, "html_clean", title, opts...)
}

// HTMLOutputFormat sets html_clean's output_format config ("text",
// "html", or "both").
func HTMLOutputFormat(format string) NodeOption {
	return func(nb *NodeBuilder) error {
		valid := map[string]bool{"text": true, "html": true, "both": true}
		if !valid[format] {
			return fmt.Errorf("invalid output_format: %s (valid: text, html, both)", format)
		}
		nb.config["output_format"] = format
		return nil
	}
}

// NewCSVToJSONNode creates a generic node running the "csv_to_json"
// executor, converting delimited input into a JSON array of objects.
func NewCSVToJSONNode(id, title string, opts ...NodeOption) *NodeBuilder {
	return NewNode(id, "csv_to_json", title, opts...)
}

// CSVDelimiter sets csv_to_json's delimiter config.
func CSVDelimiter(delimiter string) NodeOption {
	return func(nb *NodeBuilder) error {
		if delimiter == "" {
			return fmt.Errorf("delimiter cannot be empty")
		}
		nb.config["delimiter"] = delimiter
		return nil
	}
}

// CSVHasHeader sets csv_to_json's has_header config.
func CSVHasHeader(hasHeader bool) NodeOption {
	return func(nb *NodeBuilder) error {
		nb.config["has_header"] = hasHeader
		return nil
	}
}
