// Package rules names the GraphQL validation and execution rules the engine
// enforces. Every diagnostic produced by a rule carries its number and a link
// to the matching section of the GraphQL specification.
package rules

import (
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/syntax"
)

const referenceURL = "https://spec.graphql.org/October2021/"

// Ref identifies one rule.
type Ref struct {
	Number string
	Title  string
	Anchor string
}

func (r Ref) URL() string { return referenceURL + "#" + r.Anchor }

func (r Ref) String() string { return r.Number + " " + r.Title }

// Message builds a critical validation message for a failure of r at pos.
func (r Ref) Message(text string, pos syntax.Position) *messages.Message {
	m := &messages.Message{
		Severity:   messages.Critical,
		Code:       messages.CodeValidationError,
		Text:       text,
		RuleNumber: r.Number,
		RuleURL:    r.URL(),
	}
	if pos.Line > 0 {
		m.Location = &messages.Location{Line: pos.Line, Column: pos.Column}
	}
	return m
}

var (
	OperationTypeSupported = Ref{"6.1", "Executing Requests", "sec-Executing-Requests"}

	OperationNameUniqueness = Ref{"5.2.1.1", "Operation Name Uniqueness", "sec-Operation-Name-Uniqueness"}
	LoneAnonymousOperation  = Ref{"5.2.2.1", "Lone Anonymous Operation", "sec-Lone-Anonymous-Operation"}
	SingleRootField         = Ref{"5.2.3.1", "Single root field", "sec-Single-root-field"}

	FieldSelections       = Ref{"5.3.1", "Field Selections", "sec-Field-Selections"}
	FieldSelectionMerging = Ref{"5.3.2", "Field Selection Merging", "sec-Field-Selection-Merging"}
	LeafFieldSelections   = Ref{"5.3.3", "Leaf Field Selections", "sec-Leaf-Field-Selections"}

	ArgumentNames      = Ref{"5.4.1", "Argument Names", "sec-Argument-Names"}
	ArgumentUniqueness = Ref{"5.4.2", "Argument Uniqueness", "sec-Argument-Uniqueness"}
	RequiredArguments  = Ref{"5.4.2.1", "Required Arguments", "sec-Required-Arguments"}

	FragmentNameUniqueness      = Ref{"5.5.1.1", "Fragment Name Uniqueness", "sec-Fragment-Name-Uniqueness"}
	FragmentSpreadTypeExistence = Ref{"5.5.1.2", "Fragment Spread Type Existence", "sec-Fragment-Spread-Type-Existence"}
	FragmentsOnCompositeTypes   = Ref{"5.5.1.3", "Fragments On Composite Types", "sec-Fragments-On-Composite-Types"}
	FragmentsMustBeUsed         = Ref{"5.5.1.4", "Fragments Must Be Used", "sec-Fragments-Must-Be-Used"}
	FragmentSpreadTargetDefined = Ref{"5.5.2.1", "Fragment spread target defined", "sec-Fragment-spread-target-defined"}
	FragmentSpreadsNoCycles     = Ref{"5.5.2.2", "Fragment spreads must not form cycles", "sec-Fragment-spreads-must-not-form-cycles"}
	ObjectSpreadsInObjectScope  = Ref{"5.5.2.3.1", "Object Spreads In Object Scope", "sec-Object-Spreads-In-Object-Scope"}
	AbstractSpreadsInObject     = Ref{"5.5.2.3.2", "Abstract Spreads in Object Scope", "sec-Abstract-Spreads-in-Object-Scope"}
	ObjectSpreadsInAbstract     = Ref{"5.5.2.3.3", "Object Spreads In Abstract Scope", "sec-Object-Spreads-In-Abstract-Scope"}
	AbstractSpreadsInAbstract   = Ref{"5.5.2.3.4", "Abstract Spreads in Abstract Scope", "sec-Abstract-Spreads-in-Abstract-Scope"}

	ValuesOfCorrectType         = Ref{"5.6.1", "Values of Correct Type", "sec-Values-of-Correct-Type"}
	InputObjectFieldNames       = Ref{"5.6.2", "Input Object Field Names", "sec-Input-Object-Field-Names"}
	InputObjectFieldUniqueness  = Ref{"5.6.3", "Input Object Field Uniqueness", "sec-Input-Object-Field-Uniqueness"}
	InputObjectRequiredFields   = Ref{"5.6.4", "Input Object Required Fields", "sec-Input-Object-Required-Fields"}
	Directives                  = Ref{"5.7", "Directives", "sec-Validation.Directives"}
	DirectivesAreDefined        = Ref{"5.7.1", "Directives Are Defined", "sec-Directives-Are-Defined"}
	DirectivesInValidLocations  = Ref{"5.7.2", "Directives Are In Valid Locations", "sec-Directives-Are-In-Valid-Locations"}
	DirectivesUniquePerLocation = Ref{"5.7.3", "Directives Are Unique Per Location", "sec-Directives-Are-Unique-Per-Location"}
	VariableUniqueness          = Ref{"5.8.1", "Variable Uniqueness", "sec-Variable-Uniqueness"}
	VariablesAreInputTypes      = Ref{"5.8.2", "Variables Are Input Types", "sec-Variables-Are-Input-Types"}
	AllVariableUsesDefined      = Ref{"5.8.3", "All Variable Uses Defined", "sec-All-Variable-Uses-Defined"}
	AllVariablesUsed            = Ref{"5.8.4", "All Variables Used", "sec-All-Variables-Used"}
	AllVariableUsagesAreAllowed = Ref{"5.8.5", "All Variable Usages Are Allowed", "sec-All-Variable-Usages-are-Allowed"}
	ValueCompletion             = Ref{"6.4.3", "Value Completion", "sec-Value-Completion"}
	HandlingFieldErrors         = Ref{"6.4.4", "Handling Field Errors", "sec-Handling-Field-Errors"}
	CoercingVariableValues      = Ref{"6.1.2", "Coercing Variable Values", "sec-Coercing-Variable-Values"}
	CoercingFieldArguments      = Ref{"6.4.1", "Coercing Field Arguments", "sec-Coercing-Field-Arguments"}
)
