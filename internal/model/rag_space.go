package model

import "time"

// RAGSpace maps a tenant to its retrieval namespaces. The graph namespace is
// reserved ahead of the graph pipeline being wired in.
type RAGSpace struct {
	ID              uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	TenantID        string    `json:"tenant_id" gorm:"size:128;not null;uniqueIndex:uk_rag_spaces_tenant;column:tenant_id"`
	Backend         string    `json:"backend" gorm:"size:64;not null;default:arango;column:backend"`
	Mode            string    `json:"mode" gorm:"size:32;not null;default:vector;column:mode"`
	ArangoDatabase  string    `json:"arango_database" gorm:"size:128;not null;default:default;column:arango_database"`
	VectorNamespace string    `json:"vector_namespace" gorm:"size:128;not null;default:default;column:vector_namespace"`
	GraphNamespace  string    `json:"graph_namespace" gorm:"size:128;not null;default:default_graph;column:graph_namespace"`
	IsGraphEnabled  bool      `json:"is_graph_enabled" gorm:"not null;default:true;column:is_graph_enabled"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime;column:updated_at"`
}

// TableName returns the table name of the RAGSpace model.
func (RAGSpace) TableName() string {
	return "rag_spaces"
}
