package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/campbooking/internal/notify"
)

func toPlace(b *Booking) notify.Place {
	p := notify.Place{
		BookingID:  b.ID,
		CamperName: b.Name(),
		CampID:     b.CampID,
		AmountDue:  b.AmountDue,
		Expires:    b.BookingExpires,
	}

	if b.Camp != nil {
		p.CampName = b.Camp.Name
		p.CampStart = b.Camp.StartDate
	}

	return p
}

func accountNotification(kind notify.Kind, bs []*Booking, now time.Time) notify.Notification {
	n := notify.Notification{
		Kind:      kind,
		Audience:  notify.AudienceAccount,
		AccountID: bs[0].AccountID,
		Email:     bs[0].Account.Email,
		Name:      bs[0].Account.Name,
		CreatedAt: now,
	}

	for _, b := range bs {
		n.Places = append(n.Places, toPlace(b))
	}

	return n
}

// GroupByAccount splits bookings into per-account groups, keeping the order
// in which accounts first appear.
func GroupByAccount(bs []*Booking) [][]*Booking {
	index := make(map[uuid.UUID]int)

	var groups [][]*Booking

	for _, b := range bs {
		i, ok := index[b.AccountID]
		if !ok {
			i = len(groups)
			index[b.AccountID] = i
			groups = append(groups, nil)
		}

		groups[i] = append(groups[i], b)
	}

	return groups
}

// ConfirmedNotifications returns one grouped "place confirmed" message per
// account plus a "late booking" notice to camp admins for every place on a
// camp starting within the late booking threshold.
func ConfirmedNotifications(confirmed []*Booking, now time.Time, lateThreshold time.Duration) []notify.Notification {
	var ns []notify.Notification

	for _, group := range GroupByAccount(confirmed) {
		ns = append(ns, accountNotification(notify.KindPlaceConfirmed, group, now))
	}

	for _, b := range confirmed {
		if b.Camp == nil || b.Camp.StartDate.After(now.Add(lateThreshold)) {
			continue
		}

		ns = append(ns, notify.Notification{
			Kind:      notify.KindLateBooking,
			Audience:  notify.AudienceCampAdmins,
			AccountID: b.AccountID,
			Email:     b.Account.Email,
			Name:      b.Account.Name,
			Places:    []notify.Place{toPlace(b)},
			CreatedAt: now,
		})
	}

	return ns
}
