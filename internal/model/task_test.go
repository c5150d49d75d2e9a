package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTaskApplyDerived(t *testing.T) {
	tests := []struct {
		name           string
		task           Task
		expectedStatus string
		expectedNetPay string
	}{
		{
			name: "washing task not started is pending",
			task: Task{
				TaskType:         TaskTypeWashing,
				AssignedQuantity: 50,
				WashedQuantity:   0,
				Salary:           decimal.NewFromInt(100),
			},
			expectedStatus: TaskStatusPending,
			expectedNetPay: "100",
		},
		{
			name: "partial progress is in progress",
			task: Task{
				TaskType:         TaskTypeWashing,
				AssignedQuantity: 50,
				WashedQuantity:   20,
				Salary:           decimal.NewFromInt(100),
				Deduction:        decimal.NewFromInt(10),
			},
			expectedStatus: TaskStatusInProgress,
			expectedNetPay: "90",
		},
		{
			name: "washed reaching assigned completes the task",
			task: Task{
				TaskType:         TaskTypeWashing,
				AssignedQuantity: 50,
				WashedQuantity:   50,
				Salary:           decimal.NewFromInt(100),
			},
			expectedStatus: TaskStatusCompleted,
			expectedNetPay: "100",
		},
		{
			name: "daily salary is always completed",
			task: Task{
				TaskType: TaskTypeDailySalary,
				Salary:   decimal.NewFromInt(80),
			},
			expectedStatus: TaskStatusCompleted,
			expectedNetPay: "80",
		},
		{
			name: "deduction larger than salary yields negative net pay",
			task: Task{
				TaskType:  TaskTypeDailySalary,
				Salary:    decimal.NewFromInt(50),
				Deduction: decimal.NewFromInt(70),
			},
			expectedStatus: TaskStatusCompleted,
			expectedNetPay: "-20",
		},
		{
			name: "washing with zero assigned stays pending",
			task: Task{
				TaskType:         TaskTypeWashing,
				AssignedQuantity: 0,
				WashedQuantity:   0,
			},
			expectedStatus: TaskStatusPending,
			expectedNetPay: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.task.ApplyDerived()
			assert.Equal(t, tt.expectedStatus, tt.task.Status)
			assert.Equal(t, tt.expectedNetPay, tt.task.NetPay.String())
		})
	}
}

func TestTaskApplyDerivedIsIdempotent(t *testing.T) {
	task := Task{
		TaskType:         TaskTypeWashing,
		AssignedQuantity: 40,
		WashedQuantity:   40,
		Salary:           decimal.NewFromInt(120),
		Deduction:        decimal.NewFromInt(20),
	}

	task.ApplyDerived()
	first := task
	task.ApplyDerived()

	assert.Equal(t, first.Status, task.Status)
	assert.True(t, first.NetPay.Equal(task.NetPay))
}

func TestTaskCompletionPercentage(t *testing.T) {
	tests := []struct {
		name     string
		task     Task
		expected float64
	}{
		{
			name:     "half washed",
			task:     Task{TaskType: TaskTypeWashing, AssignedQuantity: 40, WashedQuantity: 20},
			expected: 50,
		},
		{
			name:     "fully washed",
			task:     Task{TaskType: TaskTypeWashing, AssignedQuantity: 40, WashedQuantity: 40},
			expected: 100,
		},
		{
			name:     "capped at 100",
			task:     Task{TaskType: TaskTypeWashing, AssignedQuantity: 40, WashedQuantity: 60},
			expected: 100,
		},
		{
			name:     "washing with no assignment is zero",
			task:     Task{TaskType: TaskTypeWashing, AssignedQuantity: 0},
			expected: 0,
		},
		{
			name:     "daily salary with no quantities is done",
			task:     Task{TaskType: TaskTypeDailySalary, AssignedQuantity: 0},
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.task.CompletionPercentage(), 0.001)
		})
	}
}
