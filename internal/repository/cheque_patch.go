package repository

// ChequePatch 支票的部分更新，只有显式设置过的字段才会出现在 UPDATE 中
type ChequePatch struct {
	fields map[string]interface{}
}

func NewChequePatch() *ChequePatch {
	return &ChequePatch{fields: make(map[string]interface{})}
}

func (p *ChequePatch) Status(status string) *ChequePatch {
	p.fields["status"] = status
	return p
}

func (p *ChequePatch) Remarks(remarks string) *ChequePatch {
	p.fields["remarks"] = remarks
	return p
}

func (p *ChequePatch) DeclineReason(reason string) *ChequePatch {
	p.fields["decline_reason"] = reason
	return p
}

func (p *ChequePatch) ClearDeclineReason() *ChequePatch {
	p.fields["decline_reason"] = nil
	return p
}

// FirstSignature 记录第一签名人，签名数置为 1
func (p *ChequePatch) FirstSignature(userID uint) *ChequePatch {
	p.fields["current_signatures"] = 1
	p.fields["first_signature_user_id"] = userID
	return p
}

func (p *ChequePatch) ClearSignatures() *ChequePatch {
	p.fields["current_signatures"] = 0
	p.fields["first_signature_user_id"] = nil
	p.fields["second_signature_user_id"] = nil
	return p
}

func (p *ChequePatch) IssueDate(date string) *ChequePatch {
	p.fields["issue_date"] = date
	return p
}

func (p *ChequePatch) IsEmpty() bool {
	return len(p.fields) == 0
}

// Has 判断某列是否被设置
func (p *ChequePatch) Has(column string) bool {
	_, ok := p.fields[column]
	return ok
}

// Fields 返回待更新列的副本
func (p *ChequePatch) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}
