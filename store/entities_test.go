package store_test

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/marquee/store"
)

// Test fixtures: a Project aggregate with a single Owner child and a list
// of Task children.

type Project struct {
	ID        string
	Name      string
	Budget    float64
	Remaining int64
	CreatedAt string
	version   int64

	Owner *Owner
	Tasks []*Task
}

type projectRow struct {
	ID        string  `dynamodbav:"id"`
	Name      string  `dynamodbav:"name"`
	Budget    float64 `dynamodbav:"budget"`
	Remaining int64   `dynamodbav:"remaining_capacity"`
	CreatedAt string  `dynamodbav:"created_at,omitempty"`
	Version   int64   `dynamodbav:"version"`
}

func (p *Project) EntityType() string { return "PROJECT" }

func (p *Project) EntityKey() store.Key {
	return store.Key{PK: "PROJECT#" + p.ID, SK: "PROJECT#" + p.ID}
}

func (p *Project) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(projectRow{
		ID:        p.ID,
		Name:      p.Name,
		Budget:    p.Budget,
		Remaining: p.Remaining,
		CreatedAt: p.CreatedAt,
		Version:   p.version,
	})
}

func (p *Project) Version() int64     { return p.version }
func (p *Project) SetVersion(v int64) { p.version = v }

func (p *Project) IndexKeys() map[string]store.Key {
	return map[string]store.Key{
		"gsi1": {PK: "PROJECTLIST", SK: "PROJECT#" + p.ID},
	}
}

func (p *Project) Hydrate(rec store.Record) error {
	var row projectRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	p.ID = row.ID
	p.Name = row.Name
	p.Budget = row.Budget
	p.Remaining = row.Remaining
	p.CreatedAt = row.CreatedAt
	p.version = row.Version
	return nil
}

func (p *Project) RelatedEntities() map[string]store.RelatedSpec {
	return map[string]store.RelatedSpec{
		"OWNER": {
			Cardinality: store.Single,
			New:         func() store.Hydrator { return &Owner{} },
			Attach: func(root, child store.Entity) {
				root.(*Project).Owner = child.(*Owner)
			},
		},
		"TASK": {
			Cardinality: store.List,
			New:         func() store.Hydrator { return &Task{} },
			Attach: func(root, child store.Entity) {
				p := root.(*Project)
				p.Tasks = append(p.Tasks, child.(*Task))
			},
		},
	}
}

type Owner struct {
	ID        string
	ProjectID string
	Name      string
}

type ownerRow struct {
	ID        string `dynamodbav:"id"`
	ProjectID string `dynamodbav:"project_id"`
	Name      string `dynamodbav:"name"`
}

func (o *Owner) EntityType() string { return "OWNER" }

func (o *Owner) EntityKey() store.Key {
	return store.Key{PK: "OWNER#" + o.ID, SK: "PROJECT#" + o.ProjectID}
}

func (o *Owner) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(ownerRow{ID: o.ID, ProjectID: o.ProjectID, Name: o.Name})
}

func (o *Owner) Hydrate(rec store.Record) error {
	var row ownerRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	o.ID, o.ProjectID, o.Name = row.ID, row.ProjectID, row.Name
	return nil
}

type Task struct {
	ID        string
	ProjectID string
	Title     string
}

type taskRow struct {
	ID        string `dynamodbav:"id"`
	ProjectID string `dynamodbav:"project_id"`
	Title     string `dynamodbav:"title"`
}

func (t *Task) EntityType() string { return "TASK" }

func (t *Task) EntityKey() store.Key {
	return store.Key{PK: "TASK#" + t.ID, SK: "PROJECT#" + t.ProjectID}
}

func (t *Task) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(taskRow{ID: t.ID, ProjectID: t.ProjectID, Title: t.Title})
}

func (t *Task) Hydrate(rec store.Record) error {
	var row taskRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	t.ID, t.ProjectID, t.Title = row.ID, row.ProjectID, row.Title
	return nil
}

// badCardinality is a root with an unmapped cardinality value, which must
// fail loudly.
type badCardinality struct{ Project }

func (b *badCardinality) RelatedEntities() map[string]store.RelatedSpec {
	return map[string]store.RelatedSpec{
		"TASK": {
			Cardinality: store.Cardinality("tree"),
			New:         func() store.Hydrator { return &Task{} },
			Attach:      func(root, child store.Entity) {},
		},
	}
}

// row builders

func projectRecord(id, name string, remaining int64, version int64) store.Record {
	p := &Project{ID: id, Name: name, Remaining: remaining, version: version}
	rec, err := store.Marshal(p, true)
	if err != nil {
		panic(err)
	}
	return rec
}

func ownerRecord(id, projectID, name string) store.Record {
	o := &Owner{ID: id, ProjectID: projectID, Name: name}
	rec, err := store.Marshal(o, true)
	if err != nil {
		panic(err)
	}
	return rec
}

func taskRecord(id, projectID, title string) store.Record {
	tk := &Task{ID: id, ProjectID: projectID, Title: title}
	rec, err := store.Marshal(tk, true)
	if err != nil {
		panic(err)
	}
	return rec
}

// auditRecord mimics a row type the Project aggregate has no mapping for.
func auditRecord(id string) store.Record {
	return store.Record{
		"PK":          &types.AttributeValueMemberS{Value: "AUDIT#" + id},
		"SK":          &types.AttributeValueMemberS{Value: "AUDIT#" + id},
		"entity_type": &types.AttributeValueMemberS{Value: "AUDIT"},
	}
}
