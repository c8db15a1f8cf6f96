// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_NamesAreUnique(t *testing.T) {
	seen := make(map[StoreName]bool)
	for _, d := range Registry() {
		require.False(t, seen[d.Name], "duplicate store %s", d.Name)
		seen[d.Name] = true
	}
}

func TestRegistry_ReturnsCopy(t *testing.T) {
	r := Registry()
	r[0].KeyPath = "changed"

	d, ok := Lookup(r[0].Name)
	require.True(t, ok)
	assert.NotEqual(t, "changed", d.KeyPath)
}

func TestLookup(t *testing.T) {
	d, ok := Lookup(ClientList)
	require.True(t, ok)
	assert.Equal(t, "primaryKey", d.KeyPath)
	assert.Equal(t, "store_client_list", d.Table())

	idx, ok := d.Index("trim_date")
	require.True(t, ok)
	assert.Equal(t, "trim_date", idx.KeyPath)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestDescriptor_Equal(t *testing.T) {
	a := Descriptor{Name: "x", KeyPath: "id", Indexes: []Index{{Name: "a", KeyPath: "a"}, {Name: "b", KeyPath: "b"}}}
	b := Descriptor{Name: "x", KeyPath: "id", Indexes: []Index{{Name: "b", KeyPath: "b"}, {Name: "a", KeyPath: "a"}}}
	assert.True(t, a.Equal(b))

	c := b
	c.AutoIncrement = true
	assert.False(t, a.Equal(c))

	d := Descriptor{Name: "x", KeyPath: "id", Indexes: []Index{{Name: "a", KeyPath: "a", Unique: true}, {Name: "b", KeyPath: "b"}}}
	assert.False(t, a.Equal(d))
}

func TestEntities_StoresAreDeclared(t *testing.T) {
	for _, e := range Entities() {
		for _, op := range []Operation{OpAdd, OpEdit, OpDelete} {
			_, ok := Lookup(e.Queue(op))
			assert.True(t, ok, "%s %s queue", e.Name, op)
		}
		for _, m := range e.Markers() {
			assert.True(t, IsMarker(m), "%s marker %s", e.Name, m)
		}
		if !e.QueueOnly() {
			_, ok := Lookup(e.Mirror)
			assert.True(t, ok, "%s mirror", e.Name)
		}
	}
}

func TestEntities_DependenciesComeFirst(t *testing.T) {
	pos := make(map[EntityName]int)
	for i, e := range Entities() {
		pos[e.Name] = i
	}
	for _, e := range Entities() {
		for _, dep := range e.DependsOn {
			assert.Less(t, pos[dep], pos[e.Name], "%s depends on %s", e.Name, dep)
		}
	}
}

func TestEntity_Discriminator(t *testing.T) {
	e, ok := LookupEntity(PersonalNote)
	require.True(t, ok)
	assert.Equal(t, "add_personalNotes", e.Discriminator(OpAdd))
	assert.Equal(t, "delete_personalNotes", e.Discriminator(OpDelete))
}

func TestEntityOf(t *testing.T) {
	e, ok := EntityOf(BackupEditHorse)
	require.True(t, ok)
	assert.Equal(t, Horse, e.Name)

	_, ok = EntityOf(BackupDateTime)
	assert.False(t, ok)
}

func TestBackupOrder(t *testing.T) {
	order := BackupOrder()
	index := func(s StoreName) int {
		for i, o := range order {
			if o == s {
				return i
			}
		}
		t.Fatalf("%s not in backup order", s)
		return -1
	}

	assert.Less(t, index(BackupAddClient), index(BackupAddHorse))
	assert.Less(t, index(BackupAddHorse), index(BackupAddTrimming))
	assert.Less(t, index(BackupDeleteTrimming), index(BackupDeleteHorse))
	assert.Less(t, index(BackupDeleteHorse), index(BackupDeleteClient))
	assert.Equal(t, BackupColorOptions, order[len(order)-1])

	for _, s := range order {
		assert.True(t, IsQueue(s))
		_, ok := Lookup(s)
		assert.True(t, ok, "%s declared", s)
	}
	assert.False(t, IsQueue(ClientList))
}

func TestSortBackup(t *testing.T) {
	got := SortBackup([]StoreName{BackupDateTime, ClientList, BackupAddTrimming, BackupAddClient, BackupAddClient})
	assert.Equal(t, []StoreName{BackupAddClient, BackupAddTrimming, BackupDateTime}, got)
}

func TestSettingsSections(t *testing.T) {
	for _, s := range Sections() {
		assert.True(t, s.Valid())
		d, ok := Lookup(s.Queue())
		require.True(t, ok)
		assert.Equal(t, "userID", d.KeyPath)
	}
	assert.False(t, SettingsSection("fonts").Valid())
}

func TestTables(t *testing.T) {
	for _, tbl := range Tables() {
		m, ok := tbl.Mirror()
		require.True(t, ok)
		_, ok = Lookup(m)
		assert.True(t, ok)
	}
	_, ok := Table("invoices").Mirror()
	assert.False(t, ok)
}
