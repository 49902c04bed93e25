package statemachine

import (
	"fmt"
	"strings"

	"k8s.io/klog/v2"
)

// ChequeStatus 支票的所有可能状态
type ChequeStatus string

const (
	ChequeStatusPending  ChequeStatus = "Pending"  // 导入后的初始态
	ChequeStatusApproved ChequeStatus = "Approved" // 已签批，可打印
	ChequeStatusDeclined ChequeStatus = "Declined" // 已拒绝，必须带拒绝原因
)

// AllChequeStatuses 按展示顺序排列
var AllChequeStatuses = []ChequeStatus{ChequeStatusPending, ChequeStatusApproved, ChequeStatusDeclined}

// ChequeTransition 定义支票状态迁移
type ChequeTransition struct {
	From ChequeStatus
	To   ChequeStatus
}

// ChequeStateMachine 支票状态机
type ChequeStateMachine struct {
	allowedTransitions map[ChequeTransition]bool
}

// NewChequeStateMachine 创建支票状态机
// 三个状态之间任意迁移都合法（包括迁移到自身，用于重复签批或补充备注）
func NewChequeStateMachine() *ChequeStateMachine {
	sm := &ChequeStateMachine{
		allowedTransitions: make(map[ChequeTransition]bool),
	}
	for _, from := range AllChequeStatuses {
		for _, to := range AllChequeStatuses {
			sm.allowedTransitions[ChequeTransition{From: from, To: to}] = true
		}
	}
	return sm
}

// ParseStatus 解析外部传入的状态值，大小写必须精确匹配
func ParseStatus(value string) (ChequeStatus, error) {
	status := ChequeStatus(strings.TrimSpace(value))
	for _, s := range AllChequeStatuses {
		if s == status {
			return s, nil
		}
	}
	return "", &InvalidStatusError{Value: value}
}

// CanTransition 检查状态迁移是否合法
func (sm *ChequeStateMachine) CanTransition(from, to ChequeStatus) bool {
	return sm.allowedTransitions[ChequeTransition{From: from, To: to}]
}

// ValidateTransition 验证状态迁移并返回错误
func (sm *ChequeStateMachine) ValidateTransition(from, to ChequeStatus) error {
	if !sm.CanTransition(from, to) {
		return &InvalidStateTransitionError{
			From: string(from),
			To:   string(to),
		}
	}
	return nil
}

// Transition 执行状态迁移（带日志）
func (sm *ChequeStateMachine) Transition(from, to ChequeStatus, chequeID uint) error {
	if err := sm.ValidateTransition(from, to); err != nil {
		klog.V(6).Infof("支票状态迁移被拒绝: chequeID=%d, %s -> %s, error=%v",
			chequeID, from, to, err)
		return err
	}

	klog.V(6).Infof("支票状态迁移: chequeID=%d, %s -> %s", chequeID, from, to)
	return nil
}

// InvalidStateTransitionError 无效的状态迁移错误
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid cheque state transition: %s -> %s", e.From, e.To)
}

// InvalidStatusError 未知的状态值
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q: must be one of Pending, Approved, Declined", e.Value)
}

// IsPrintable 只有已签批的支票可以打印
func IsPrintable(status ChequeStatus) bool {
	return status == ChequeStatusApproved
}

// LeavesApproved 判断迁移是否离开了已签批状态
func LeavesApproved(from, to ChequeStatus) bool {
	return from == ChequeStatusApproved && to != ChequeStatusApproved
}

// LeavesDeclined 判断迁移是否离开了已拒绝状态
func LeavesDeclined(from, to ChequeStatus) bool {
	return from == ChequeStatusDeclined && to != ChequeStatusDeclined
}
