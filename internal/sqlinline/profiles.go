package sqlinline

const QSelectProfileByID = `--sql 3fd9f931-6ea7-43f4-bff3-07d6a7f528d1
select
    id::text,
    coalesce(full_name, ''),
    coalesce(avatar_url, ''),
    coalesce(email, ''),
    role,
    language_preference,
    subscription_status,
    credits_remaining,
    coalesce(stripe_customer_id, ''),
    created_at
from profiles
where id = $1::uuid
limit 1;
`

const QInsertProfile = `--sql 11968711-4fe3-42ff-8152-1323bc6ae2e8
insert into profiles (id, full_name, avatar_url, email, role, language_preference, subscription_status, credits_remaining, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::int, now())
on conflict (id) do update set id = excluded.id
returning
    id::text,
    coalesce(full_name, ''),
    coalesce(avatar_url, ''),
    coalesce(email, ''),
    role,
    language_preference,
    subscription_status,
    credits_remaining,
    coalesce(stripe_customer_id, ''),
    created_at;
`

const QListProfiles = `--sql e3cea24a-1969-4245-b6ba-850d6449e7a0
select
    id::text,
    coalesce(full_name, ''),
    coalesce(avatar_url, ''),
    coalesce(email, ''),
    role,
    language_preference,
    subscription_status,
    credits_remaining,
    coalesce(stripe_customer_id, ''),
    created_at
from profiles
where $1::text = ''
   or full_name ilike '%' || $1::text || '%'
   or id::text ilike '%' || $1::text || '%'
order by created_at desc;
`

const QUpdateProfileDetails = `--sql 713997a2-0ad3-4b66-bd52-9153eb2fb2a6
update profiles
set full_name = coalesce(nullif($2::text, ''), full_name),
    language_preference = coalesce(nullif($3::text, ''), language_preference)
where id = $1::uuid
returning
    id::text,
    coalesce(full_name, ''),
    coalesce(avatar_url, ''),
    coalesce(email, ''),
    role,
    language_preference,
    subscription_status,
    credits_remaining,
    coalesce(stripe_customer_id, ''),
    created_at;
`

const QUpdateProfileCredits = `--sql 0277f618-3063-4c7c-8427-545bcb136809
update profiles
set credits_remaining = greatest($2::int, 0)
where id = $1::uuid
returning
    id::text,
    coalesce(full_name, ''),
    coalesce(avatar_url, ''),
    coalesce(email, ''),
    role,
    language_preference,
    subscription_status,
    credits_remaining,
    coalesce(stripe_customer_id, ''),
    created_at;
`

const QUpdateProfileSubscription = `--sql 4b85d2ba-4b5e-4cda-9b2a-a0fdb9234971
update profiles
set subscription_status = $2::text,
    credits_remaining = greatest($3::int, 0)
where id = $1::uuid
returning
    id::text,
    coalesce(full_name, ''),
    coalesce(avatar_url, ''),
    coalesce(email, ''),
    role,
    language_preference,
    subscription_status,
    credits_remaining,
    coalesce(stripe_customer_id, ''),
    created_at;
`

const QUpdateProfileRole = `--sql a94e327a-c6b6-44eb-b3e1-900e232344d5
update profiles
set role = $2::text
where id = $1::uuid
returning
    id::text,
    coalesce(full_name, ''),
    coalesce(avatar_url, ''),
    coalesce(email, ''),
    role,
    language_preference,
    subscription_status,
    credits_remaining,
    coalesce(stripe_customer_id, ''),
    created_at;
`

// QConsumeCredit is the decrement-if-positive step. Admin and pro rows are
// never touched and the counter cannot drop below zero.
const QConsumeCredit = `--sql 093a64cc-9ea2-4fd3-8926-d38dfd4bb0ce
update profiles
set credits_remaining = credits_remaining - 1
where id = $1::uuid
  and role <> 'admin'
  and subscription_status <> 'pro'
  and credits_remaining > 0;
`
