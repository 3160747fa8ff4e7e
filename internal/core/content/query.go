package content

import "fmt"

// Field names the content source orders and filters by.
const (
	FieldDocumentType         = "document.type"
	FieldDocumentID           = "document.id"
	FieldFirstPublicationDate = "document.first_publication_date"
)

// Predicate filters documents. Only equality is needed by the site.
type Predicate struct {
	Path  string
	Value string
}

// At matches documents whose field at path equals value.
func At(path, value string) Predicate {
	return Predicate{Path: path, Value: value}
}

// TypeIs matches documents of the given custom type.
func TypeIs(docType string) Predicate {
	return At(FieldDocumentType, docType)
}

// UIDIs matches the document of docType with the given uid.
func UIDIs(docType, uid string) Predicate {
	return At(fmt.Sprintf("my.%s.uid", docType), uid)
}

// IDIs matches the document with the given id.
func IDIs(id string) Predicate {
	return At(FieldDocumentID, id)
}

// String renders the predicate in the API's query syntax.
func (p Predicate) String() string {
	return fmt.Sprintf("[at(%s, %q)]", p.Path, p.Value)
}

// Ordering sorts results by one field.
type Ordering struct {
	Field      string
	Descending bool
}

// String renders the ordering, e.g. "document.first_publication_date desc".
func (o Ordering) String() string {
	if o.Descending {
		return o.Field + " desc"
	}
	return o.Field
}

// NewestFirst orders by first publication date, most recent first.
func NewestFirst() Ordering {
	return Ordering{Field: FieldFirstPublicationDate, Descending: true}
}

// OldestFirst orders by first publication date, oldest first.
func OldestFirst() Ordering {
	return Ordering{Field: FieldFirstPublicationDate}
}

// Query describes one page request.
// When Cursor is set it only selects the page. Ref, predicates, fetch and
// orderings always come from the query, never from the cursor.
type Query struct {
	// Ref selects the content release; empty means the published master ref.
	Ref        string
	Cursor     string
	After      string
	Predicates []Predicate
	Fetch      []string
	Orderings  []Ordering
	PageSize   int
}

// Response is one page of results.
// NextPage is the opaque cursor of the following page, empty on the last one.
type Response struct {
	NextPage   string     `json:"next_page"`
	Results    []Document `json:"results"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}
