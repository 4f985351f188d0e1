package ast

type (
	// главные сущности
	FileID uint32
	ItemID uint32
	ExprID uint32
	// подсущности
	VariantID uint32
	PayloadID uint32
)

const (
	NoFileID    FileID    = 0
	NoItemID    ItemID    = 0
	NoExprID    ExprID    = 0
	NoVariantID VariantID = 0
	NoPayloadID PayloadID = 0
)

func (id FileID) IsValid() bool    { return id != NoFileID }
func (id ItemID) IsValid() bool    { return id != NoItemID }
func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id VariantID) IsValid() bool { return id != NoVariantID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
