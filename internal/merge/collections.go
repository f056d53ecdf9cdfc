package merge

import (
	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/tombstone"
)

// lww merges two keyed collections. Items are indexed by EntityID; for a key
// on both sides the larger Stamp wins and a tie keeps local. Output order is
// remote order with local-only items appended in local order, so merging a
// collection with itself returns it unchanged.
//
// pick, when set, combines two colliding copies instead of choosing one.
func lww[T models.Entity](local, remote []T, pick func(l, r T) T) []T {
	if local == nil && remote == nil {
		return nil
	}
	out := make([]T, 0, len(remote)+len(local))
	index := make(map[string]int, len(remote)+len(local))
	for _, r := range remote {
		if i, ok := index[r.EntityID()]; ok {
			out[i] = r
			continue
		}
		index[r.EntityID()] = len(out)
		out = append(out, r)
	}
	for _, l := range local {
		i, ok := index[l.EntityID()]
		if !ok {
			index[l.EntityID()] = len(out)
			out = append(out, l)
			continue
		}
		r := out[i]
		switch {
		case pick != nil:
			out[i] = pick(l, r)
		case l.Stamp() >= r.Stamp():
			out[i] = l
		}
	}
	return out
}

// byID is lww followed by a tombstone purge.
func byID[T models.Entity](local, remote []T, ts tombstone.Set) []T {
	return tombstone.Purge(lww(local, remote, nil), ts)
}

func mergePatients(local, remote []models.Patient, ts tombstone.Set) []models.Patient {
	merged := lww(local, remote, func(l, r models.Patient) models.Patient {
		return mergePatient(l, r, ts)
	})
	return tombstone.Purge(merged, ts)
}

// mergePatient merges two copies of the same patient. Scalar fields come from
// the copy with the newer top-level UpdatedAt (tie keeps local); teeth and
// sub-collections are merged independently of it.
func mergePatient(l, r models.Patient, ts tombstone.Set) models.Patient {
	out := r
	if l.UpdatedAt >= r.UpdatedAt {
		out = l
	}

	out.Teeth = mergeTeeth(l.Teeth, r.Teeth)
	out.Appointments = byID(l.Appointments, r.Appointments, ts)
	out.Payments = byID(l.Payments, r.Payments, ts)
	out.Examinations = byID(l.Examinations, r.Examinations, ts)
	out.RootCanals = byID(l.RootCanals, r.RootCanals, ts)
	out.TreatmentSessions = byID(l.TreatmentSessions, r.TreatmentSessions, ts)
	out.Prescriptions = byID(l.Prescriptions, r.Prescriptions, ts)
	out.Images = byID(l.Images, r.Images, ts)
	out.StructuredMedicalHistory = byID(l.StructuredMedicalHistory, r.StructuredMedicalHistory, ts)
	// Keyed by question: the latest answer replaces older ones.
	out.PatientQueries = byID(l.PatientQueries, r.PatientQueries, ts)

	out.UpdatedAt = max(l.UpdatedAt, r.UpdatedAt)
	return out
}

// mergeTeeth starts from the remote chart and overlays each local tooth that
// is missing remotely or at least as recent.
func mergeTeeth(local, remote map[int]models.Tooth) map[int]models.Tooth {
	if local == nil && remote == nil {
		return nil
	}
	out := make(map[int]models.Tooth, len(remote)+len(local))
	for n, t := range remote {
		out[n] = t
	}
	for n, lt := range local {
		rt, ok := out[n]
		if !ok || lt.UpdatedAt >= rt.UpdatedAt {
			out[n] = lt
		}
	}
	return out
}
