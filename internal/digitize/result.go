package digitize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cleargraph/internal/gateway/provider"
	"cleargraph/internal/pkg/jsonutil"
	"cleargraph/internal/prompt"
	"cleargraph/internal/svgclean"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// ErrUnparseable means the model answered but not with a usable diagram.
var ErrUnparseable = errors.New("Failed to parse the generated diagram data.")

// Result is the structured answer for one diagram.
type Result struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	SVGContent  string `json:"svgContent"`
}

// OutputSchema is the response schema sent to the model. Descriptions come from the
// active prompt set.
func OutputSchema(f prompt.Fields) *provider.Schema {
	return &provider.Schema{
		Name: "digitized_diagram",
		Type: provider.TypeObject,
		Properties: []provider.Property{
			{Name: "title", Schema: provider.Schema{Type: provider.TypeString, Description: f.Title}},
			{Name: "explanation", Schema: provider.Schema{Type: provider.TypeString, Description: f.Explanation}},
			{Name: "svgContent", Schema: provider.Schema{Type: provider.TypeString, Description: f.SVGContent}},
		},
		Required: []string{"title", "explanation", "svgContent"},
	}
}

var resultSchema = mustCompileResultSchema()

// mustCompileResultSchema builds the validator from OutputSchema, left open to extra
// properties since only the three named fields are read.
func mustCompileResultSchema() *jsonschema.Schema {
	doc := OutputSchema(prompt.Fields{}).JSONSchema()
	delete(doc, "additionalProperties")
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.json", strings.NewReader(string(raw))); err != nil {
		panic(err)
	}
	return compiler.MustCompile("result.json")
}

func unparseable(cause error) error {
	return fmt.Errorf("%w (%v)", ErrUnparseable, cause)
}

// ParseResponse turns the model's text into a Result: fences and surrounding prose are
// dropped, the JSON is checked against the result schema and the SVG is sanitized.
func ParseResponse(raw string) (Result, error) {
	body, ok := jsonutil.ExtractJSON(raw)
	if !ok {
		return Result{}, unparseable(errors.New("no JSON object in response"))
	}
	if !gjson.Valid(body) {
		return Result{}, unparseable(errors.New("invalid JSON"))
	}
	if !gjson.Parse(body).IsObject() {
		return Result{}, unparseable(errors.New("root is not an object"))
	}
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Result{}, unparseable(err)
	}
	if err := resultSchema.Validate(doc); err != nil {
		return Result{}, unparseable(err)
	}
	var res Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return Result{}, unparseable(err)
	}
	svg, err := svgclean.Sanitize(res.SVGContent)
	if err != nil {
		return Result{}, unparseable(err)
	}
	res.SVGContent = svg
	res.Title = strings.TrimSpace(res.Title)
	res.Explanation = strings.TrimSpace(res.Explanation)
	return res, nil
}
