package sqlinline

// QSetProfilePlan is used by the operator CLI. Negative credits keep the
// current balance.
const QSetProfilePlan = `--sql 65b9e254-9804-41fd-92a2-06fab48d4497
update profiles
set subscription_status = coalesce(nullif($2::text, ''), subscription_status),
    credits_remaining = case when $3::int < 0 then credits_remaining else $3::int end,
    role = coalesce(nullif($4::text, ''), role)
where id = $1::uuid
returning id::text, role, subscription_status, credits_remaining;
`

const QSelectProfileIDByEmail = `--sql 07b6bd38-8e4e-40f8-b763-130151cd3202
select id::text
from profiles
where lower(email) = lower($1::text)
limit 1;
`
