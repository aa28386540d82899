package memory

import "github.com/hashicorp/go-memdb"

var (
	tblEntities      = "entities"
	tblRevisions     = "revisions"
	tblCollections   = "collections"
	tblAlerts        = "alerts"
	tblSubscriptions = "subscriptions"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblEntities: {
			Name: tblEntities,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "EntityType"},
							&memdb.IntFieldIndex{Field: "ID"},
						},
					},
				},
			},
		},
		tblRevisions: {
			Name: tblRevisions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
				"entity": {
					Name: "entity",
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "EntityType"},
							&memdb.IntFieldIndex{Field: "EntityID"},
						},
					},
				},
			},
		},
		tblCollections: {
			Name: tblCollections,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
			},
		},
		tblAlerts: {
			Name: tblAlerts,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
				"archived": {
					Name:    "archived",
					Indexer: &memdb.BoolFieldIndex{Field: "Archived"},
				},
			},
		},
		tblSubscriptions: {
			Name: tblSubscriptions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
				"archived": {
					Name:    "archived",
					Indexer: &memdb.BoolFieldIndex{Field: "Archived"},
				},
			},
		},
	},
}
