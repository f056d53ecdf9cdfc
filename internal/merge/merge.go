// Package merge reconciles two replicas of the clinic snapshot.
//
// Merge works below the granularity of the whole record: keyed collections are
// merged item by item with last-writer-wins on UpdatedAt (ties keep the local
// copy), patients are merged field group by field group, teeth tooth by tooth,
// and tombstones from either side remove items unconditionally.
package merge

import (
	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/tombstone"
)

// Merge combines local and remote into a new snapshot. It performs no I/O,
// never modifies its arguments and never panics. A nil or uninitialized side
// is ignored.
func Merge(local, remote *models.Snapshot) *models.Snapshot {
	if !remote.Initialized() {
		if local == nil {
			return &models.Snapshot{Settings: models.DefaultSettings()}
		}
		return local
	}
	if !local.Initialized() {
		return remote
	}

	deleted := tombstone.Union(local.DeletedIDs, remote.DeletedIDs)
	ts := tombstone.NewSet(deleted)

	// Non-itemized fields come from the newer snapshot as a whole.
	base := remote
	if local.LastUpdated >= remote.LastUpdated {
		base = local
	}
	out := *base

	out.Patients = mergePatients(local.Patients, remote.Patients, ts)
	out.Memos = byID(local.Memos, remote.Memos, ts)
	out.Inventory = byID(local.Inventory, remote.Inventory, ts)
	out.Expenses = byID(local.Expenses, remote.Expenses, ts)
	out.LabOrders = byID(local.LabOrders, remote.LabOrders, ts)
	out.Doctors = byID(local.Doctors, remote.Doctors, ts)
	out.Secretaries = byID(local.Secretaries, remote.Secretaries, ts)

	// Inherited wholesale, but a tombstoned id must not survive in any collection.
	out.Supplies = tombstone.Purge(base.Supplies, ts)
	out.GuestAppointments = tombstone.Purge(base.GuestAppointments, ts)
	out.Medications = tombstone.Purge(base.Medications, ts)
	out.MedicationCategories = tombstone.Purge(base.MedicationCategories, ts)

	out.DeletedIDs = deleted
	out.LastUpdated = max(local.LastUpdated, remote.LastUpdated)

	restoreDeviceAssets(&out, local)
	return &out
}

// restoreDeviceAssets puts back the background images held by the local
// device. They are large device-resident assets; the remote copy is never
// authoritative for them.
func restoreDeviceAssets(out, local *models.Snapshot) {
	if v := local.Settings.RxBackgroundImage; v != "" {
		out.Settings.RxBackgroundImage = v
	}
	if v := local.Settings.ConsentBackgroundImage; v != "" {
		out.Settings.ConsentBackgroundImage = v
	}
	if v := local.Settings.InstructionsBackgroundImage; v != "" {
		out.Settings.InstructionsBackgroundImage = v
	}

	localBg := make(map[string]string, len(local.Doctors))
	for _, d := range local.Doctors {
		if d.RxBackgroundImage != "" {
			localBg[d.ID] = d.RxBackgroundImage
		}
	}
	if len(localBg) == 0 {
		return
	}
	for i := range out.Doctors {
		if bg, ok := localBg[out.Doctors[i].ID]; ok {
			out.Doctors[i].RxBackgroundImage = bg
		}
	}
}
