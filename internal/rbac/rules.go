package rbac

const (
	PermAssignmentCreate       = "assignment:create"
	PermAssignmentListOwn      = "assignment:list-own"
	PermAssignmentListAssigned = "assignment:list-assigned"
	PermAssignmentView         = "assignment:view"
	PermAssignmentSubmit       = "assignment:submit"
	PermAssistAsk              = "assist:ask"
	PermQuizGenerate           = "quiz:generate"
)

var RolePermissions = map[string][]string{
	"student": {
		PermAssignmentListAssigned,
		PermAssignmentView,
		PermAssignmentSubmit,
		PermAssistAsk,
	},
	"teacher": {
		PermAssignmentCreate,
		PermAssignmentListOwn,
		PermAssignmentView,
		PermQuizGenerate,
	},
}
