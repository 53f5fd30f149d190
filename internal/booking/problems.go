package booking

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

// CheckInput is the state of the world a booking is checked against.
type CheckInput struct {
	Now    time.Time
	Prices *pricing.Table

	// AccountBookings are the account's bookings for the camp year, in any
	// state. The booking being checked may or may not be among them.
	AccountBookings []*Booking

	// Booked counts places already booked on the booking's camp.
	Booked Places

	Agreements []Agreement
}

func (in CheckInput) others(b *Booking) []*Booking {
	var out []*Booking

	for _, o := range in.AccountBookings {
		if o.ID == b.ID || o.State.Cancelled() {
			continue
		}

		if o.Camp != nil && o.Camp.Year != b.Camp.Year {
			continue
		}

		out = append(out, o)
	}

	return out
}

// Problems lists everything that stops the booking being booked. An empty
// result means it may move to Booked. Every applicable problem is collected.
func Problems(b *Booking, in CheckInput) []string {
	if b.State == StateApproved {
		return nil
	}

	var problems []string

	camp := b.Camp
	others := in.others(b)

	if !in.Prices.Complete() {
		problems = append(problems, fmt.Sprintf("Prices have not been set for the year %d.", camp.Year))
	}

	switch b.PriceType {
	case pricing.TypeCustom:
		problems = append(problems, "A custom discount needs to be arranged by the booking secretary.")
	case pricing.TypeSecondChild:
		if countPriceTypes(others, pricing.TypeFull) < 1 {
			problems = append(problems, "You cannot use a 2nd child discount unless you have another child at full price. "+
				"Please edit the place details and choose an appropriate price type.")
		}
	case pricing.TypeThirdChild:
		if countPriceTypes(others, pricing.TypeFull, pricing.TypeSecondChild) < 2 {
			problems = append(problems, "You cannot use a 3rd child discount unless you have two other children without this discount. "+
				"Please edit the place details and choose an appropriate price type.")
		}
	}

	if b.SeriousIllness {
		problems = append(problems, "Must be approved by leader due to serious illness/condition.")
	}

	problems = append(problems, ageProblems(b)...)
	problems = append(problems, placeProblems(b, others, in.Booked)...)

	if camp.LastBookingDate != nil && dateOnly(in.Now).After(dateOnly(*camp.LastBookingDate)) {
		problems = append(problems, "This camp is closed for bookings.")
	}

	for _, a := range in.Agreements {
		if !a.AppliesTo(camp) || slices.Contains(b.AgreementsChecked, a.ID) {
			continue
		}

		problems = append(problems, fmt.Sprintf("You need to confirm your agreement in section 'Camp-specific conditions' (%s).", a.Name))
	}

	return problems
}

func countPriceTypes(bs []*Booking, types ...pricing.PriceType) int {
	n := 0

	for _, b := range bs {
		if slices.Contains(types, b.PriceType) {
			n++
		}
	}

	return n
}

func ageProblems(b *Booking) []string {
	camp := b.Camp
	age := b.AgeOnCamp()
	on := camp.AgeBaseDate().Format("2 January 2006")

	var problems []string

	if age < camp.MinimumAge {
		problems = append(problems, fmt.Sprintf("Camper will be %d which is below the minimum age (%d) on %s.", age, camp.MinimumAge, on))
	}

	if camp.MaximumAge > 0 && age > camp.MaximumAge {
		problems = append(problems, fmt.Sprintf("Camper will be %d which is above the maximum age (%d) on %s.", age, camp.MaximumAge, on))
	}

	return problems
}

var sexNames = map[Sex]string{SexMale: "boys", SexFemale: "girls"}

// placeProblems emits at most one capacity message, the tightest that applies:
// no places at all, then no places for the camper's sex, then not enough
// places for everyone of the same camp in the basket.
func placeProblems(b *Booking, others []*Booking, booked Places) []string {
	camp := b.Camp

	left := camp.MaxCampers - booked.Total
	if left <= 0 {
		return []string{"There are no places left on this camp."}
	}

	leftForSex, limited := sexPlacesLeft(camp, booked, b.Sex)
	if limited && leftForSex <= 0 {
		return []string{fmt.Sprintf("There are no places left for %s on this camp.", sexNames[b.Sex])}
	}

	toBook, toBookForSex := 1, 1

	for _, o := range others {
		if !o.InBasket() || o.CampID != b.CampID {
			continue
		}

		toBook++

		if o.Sex == b.Sex {
			toBookForSex++
		}
	}

	if left < toBook {
		return []string{"There are not enough places left on this camp for the campers in this set of bookings."}
	}

	if limited && leftForSex < toBookForSex {
		return []string{fmt.Sprintf("There are not enough places for %s left on this camp for the campers in this set of bookings.", sexNames[b.Sex])}
	}

	return nil
}

func sexPlacesLeft(camp *Camp, booked Places, s Sex) (int, bool) {
	switch s {
	case SexMale:
		return camp.MaxMaleCampers - booked.Male, camp.MaxMaleCampers > 0
	case SexFemale:
		return camp.MaxFemaleCampers - booked.Female, camp.MaxFemaleCampers > 0
	}

	return 0, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Warnings are informational and never block booking.
func Warnings(b *Booking, in CheckInput) []string {
	var warnings []string

	others := in.others(b)

	for _, o := range others {
		if o.CampID == b.CampID && sameName(o, b) {
			warnings = append(warnings, fmt.Sprintf("You have entered another set of place details for a camper called '%s' on camp %s. "+
				"Please ensure you don't book multiple places for the same camper!", b.Name(), b.Camp.Name))

			break
		}
	}

	switch b.PriceType {
	case pricing.TypeFull:
		names := namesWithPriceType(b, others, pricing.TypeFull)
		if len(names) > 1 {
			w := "You have multiple places at 'Full price'. "
			if len(names) == 2 {
				w += fmt.Sprintf("If %s are from the same family, one is eligible for the 2nd child discount.", prettyNames(names))
			} else {
				w += fmt.Sprintf("If %s are from the same family, one or more might be eligible for the 2nd or 3rd child discounts.", prettyNames(names))
			}

			warnings = append(warnings, w)
		}
	case pricing.TypeSecondChild:
		names := namesWithPriceType(b, others, pricing.TypeSecondChild)
		if len(names) > 1 {
			w := "You have multiple places at '2nd child discount'. "
			if len(names) == 2 {
				w += fmt.Sprintf("If %s are from the same family, one is eligible for the 3rd child discount.", prettyNames(names))
			} else {
				w += fmt.Sprintf("If %s are from the same family, %d are eligible for the 3rd child discount.", prettyNames(names), len(names)-1)
			}

			warnings = append(warnings, w)
		}
	}

	return warnings
}

func sameName(a, b *Booking) bool {
	return strings.EqualFold(strings.TrimSpace(a.FirstName), strings.TrimSpace(b.FirstName)) &&
		strings.EqualFold(strings.TrimSpace(a.LastName), strings.TrimSpace(b.LastName))
}

// namesWithPriceType returns the distinct, sorted camper names among b and
// others that use the price type.
func namesWithPriceType(b *Booking, others []*Booking, pt pricing.PriceType) []string {
	names := []string{b.Name()}

	for _, o := range others {
		if o.PriceType == pt {
			names = append(names, o.Name())
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

func prettyNames(names []string) string {
	return strings.Join(names[1:], ", ") + " and " + names[0]
}
