package models

// UserAgent is sent with every request made by the console.
const UserAgent = "roster-console/1.0"

// Division represents an organizational division.
type Division struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Key returns the identifier used to match displayed rows.
func (d Division) Key() string { return d.ID }

// Employee represents an employee entity as returned by the API, with its division embedded.
type Employee struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Phone    string   `json:"phone"`
	Position string   `json:"position"`
	Image    *string  `json:"image"`
	Division Division `json:"division"`
}

// Key returns the identifier used to match displayed rows.
func (e Employee) Key() string { return e.ID }

// EmployeeInput holds the fields of the create/edit employee form.
type EmployeeInput struct {
	Name       string
	Phone      string
	Position   string
	DivisionID string
	Image      *Upload
}

// Upload is an opaque binary file attached to a multipart form.
type Upload struct {
	Filename string
	Data     []byte
}

// InputFromEmployee prefills an edit form with the values of an existing employee.
func InputFromEmployee(e Employee) EmployeeInput {
	return EmployeeInput{
		Name:       e.Name,
		Phone:      e.Phone,
		Position:   e.Position,
		DivisionID: e.Division.ID,
	}
}

// User is the account behind the bearer token.
type User struct {
	ID       any    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}
