package domain

// A depot or delivery destination.
// OpenHour and CloseHour are minutes from midnight; ServiceTime is in minutes.
type Location struct {
	ID          string
	Address     string
	Coordinates Coordinates
	OpenHour    int
	CloseHour   int
	ServiceTime float64
}
