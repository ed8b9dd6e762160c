/*
Package operation runs the devcontainer-sync commands against a git repository.

	+-------------+      +-------------+      +-------------+
	|  upstream   | ---> |  tracking   | ---> |   subtree   |
	| (claude/*)  |      |   branch    |      |   split     |
	+-------------+      +-------------+      +------+------+
	                                                 |
	                     +-------------+      +------+------+
	                     |  customize  | <--- |  main branch|
	                     |   (strip)   |      | add / merge |
	                     +-------------+      +-------------+

🎯 Purpose:
- Composes pkg/git managers into the init, update and remove sequences
- Runs the customization engine over the synced subtree and commits the result
- Compares the fetched upstream with the hosted repository for status

🔄 Flow:
 1. Check repository preconditions
 2. Fetch the upstream and move the tracking branch
 3. Split the devcontainer directory out of the tracking branch
 4. Add or merge the split branch into the main branch
 5. Optionally strip the firewall and commit

⚠️ Errors:
Every error leaving this package is an *Error carrying a Category. The
category decides the process exit code and the suggestion shown to the user.

🔍 Example:

	op, err := operation.New(operation.Options{
		Config: cfg,
		Runner: runner,
		FS:     osfs.New(runner.Dir()),
	})
	res, err := op.Init(ctx, operation.InitOptions{StripFirewall: true})
*/
package operation
