package store

// SQL query constants organized by entity.
// All SQL lives here. PostgresStore methods reference these constants.

// Watcher queries.
const (
	queryInsertWatcher = `
		INSERT INTO watchers (id, email, product_url, product_title, created_at)
		VALUES (@id, @email, @product_url, @product_title, now())
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at`

	queryGetWatcher = `
		SELECT id, email, product_url, product_title, created_at
		FROM watchers
		WHERE id = $1`

	queryDeleteWatcher = `DELETE FROM watchers WHERE id = $1`
)

// Subscription queries.
const (
	queryGetSubscription = `
		SELECT email, subscribed, channel_ref, COALESCE(subscription_ref, ''),
			created_at, updated_at
		FROM subscriptions
		WHERE email = $1`

	queryInsertSubscription = `
		INSERT INTO subscriptions (email, subscribed, channel_ref, subscription_ref, created_at, updated_at)
		VALUES (@email, @subscribed, @channel_ref, NULLIF(@subscription_ref, ''), now(), now())
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at, updated_at`

	querySetSubscribed = `
		UPDATE subscriptions SET
			subscribed = $2,
			updated_at = now()
		WHERE email = $1
		RETURNING email, subscribed, channel_ref, COALESCE(subscription_ref, ''),
			created_at, updated_at`

	queryAttachChannel = `
		UPDATE subscriptions SET
			channel_ref = $2,
			subscription_ref = NULLIF($3, ''),
			updated_at = now()
		WHERE email = $1 AND channel_ref = ''`
)

// Product queries.
const (
	queryUpsertProduct = `
		INSERT INTO products (product_url, product_title, latest_price, updated_at)
		VALUES (@product_url, @product_title, @latest_price, now())
		ON CONFLICT (product_url) DO UPDATE SET
			product_title = EXCLUDED.product_title,
			latest_price  = EXCLUDED.latest_price,
			updated_at    = now()
		RETURNING updated_at`

	queryGetProduct = `
		SELECT product_url, product_title, latest_price, updated_at
		FROM products
		WHERE product_url = $1`

	queryListProducts = `
		SELECT product_url, product_title, latest_price, updated_at
		FROM products
		ORDER BY product_url`

	// IS NOT DISTINCT FROM treats two NULLs as equal, so an unknown expected
	// price only matches an unknown stored price.
	queryUpdateProductPriceIfEqual = `
		UPDATE products SET
			latest_price = $3,
			updated_at   = now()
		WHERE product_url = $1
		  AND latest_price IS NOT DISTINCT FROM $2`
)

// Task queue queries.
const (
	queryEnqueueTasks = `
		INSERT INTO tasks (payload)
		SELECT p::jsonb FROM unnest($1::text[]) WITH ORDINALITY AS t(p, n)
		ORDER BY n`

	queryClaimTasks = `
		WITH claimed AS (
			SELECT id FROM tasks
			WHERE leased_until IS NULL OR leased_until < now()
			ORDER BY enqueued_at ASC, id ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE tasks
		SET leased_by = $1, leased_until = $3, attempts = attempts + 1
		FROM claimed
		WHERE tasks.id = claimed.id
		RETURNING tasks.id, tasks.payload, tasks.attempts, tasks.enqueued_at, tasks.leased_by`

	queryDeleteTask = `
		DELETE FROM tasks WHERE id = $1 AND leased_by = $2`

	queryCountPendingTasks = `SELECT COUNT(*) FROM tasks`
)

// Scheduler queries.
const (
	queryInsertJobRun = `
		INSERT INTO job_runs (job_name)
		VALUES ($1)
		RETURNING id`

	queryCompleteJobRun = `
		UPDATE job_runs SET
			completed_at  = now(),
			status        = $2,
			error_text    = $3,
			rows_affected = $4
		WHERE id = $1`

	queryListJobRuns = `
		SELECT id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT $2`

	queryListLatestJobRuns = `
		SELECT DISTINCT ON (job_name)
			id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		ORDER BY job_name, started_at DESC`

	queryMarkStaleJobRunsCrashed = `
		UPDATE job_runs SET
			status       = 'crashed',
			completed_at = now()
		WHERE status = 'running' AND started_at < $1`

	queryDeleteOldJobRuns = `
		DELETE FROM job_runs WHERE started_at < now() - interval '30 days'`

	queryAcquireSchedulerLock = `
		INSERT INTO scheduler_locks (job_name, lock_holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
			SET locked_at   = now(),
				lock_holder = EXCLUDED.lock_holder,
				expires_at  = EXCLUDED.expires_at
			WHERE scheduler_locks.expires_at < now()
		RETURNING job_name`

	queryReleaseSchedulerLock = `
		DELETE FROM scheduler_locks WHERE job_name = $1 AND lock_holder = $2`
)
