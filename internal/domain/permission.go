package domain

// CanModifyTask is the permission rule for every gated task mutation:
// admins may change any task, everyone else only the tasks they execute.
// Authorship grants nothing.
func CanModifyTask(role Role, isExecutor bool) bool {
	return role.IsAdmin() || isExecutor
}

// CanModify applies CanModifyTask to a concrete actor and task.
func (u *User) CanModify(t *Task) bool {
	return CanModifyTask(u.Role, u.ID == t.ExecutorID)
}
