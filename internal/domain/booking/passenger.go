package booking

// Passenger is one entry in a booking's passenger manifest.
type Passenger struct {
	FullName string `json:"full_name"`
	Age      int    `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	IDNumber string `json:"id_number,omitempty"`
	Phone    string `json:"phone,omitempty"`
}
